// Package aggregate computes the summary totals and the two breakdowns
// shown next to the transaction list.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pocketwise/internal/core"
)

// OtherCategory collects expenses recorded without a category.
const OtherCategory = "Other"

// Report is everything derived from one visible subset.
type Report struct {
	Totals     core.Totals
	Categories []core.CategoryAmount
	Months     []core.MonthTotals
}

// Build runs every aggregation over txns. now picks the fallback month
// when no transaction has a usable date.
func Build(txns []core.Transaction, now time.Time) Report {
	return Report{
		Totals:     Totals(txns),
		Categories: Categories(txns),
		Months:     Months(txns, now),
	}
}

// Totals sums income and expense. Net is income minus expense.
func Totals(txns []core.Transaction) core.Totals {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return core.Totals{
		Income:  income,
		Expense: expense,
		Net:     income.Sub(expense),
	}
}

// Categories groups expenses by category in the order each category first
// appears. With no expenses it returns a single placeholder slice so the
// pie chart always has something to draw.
func Categories(txns []core.Transaction) []core.CategoryAmount {
	index := make(map[string]int)
	var out []core.CategoryAmount
	for _, t := range txns {
		if t.Type != core.Expense {
			continue
		}
		// Grouped by the stored text so every slice matches a category filter.
		name := t.Category
		if name == "" {
			name = OtherCategory
		}
		if i, ok := index[name]; ok {
			out[i].Amount = out[i].Amount.Add(t.Amount)
			continue
		}
		index[name] = len(out)
		out = append(out, core.CategoryAmount{Name: name, Amount: t.Amount})
	}
	if len(out) == 0 {
		return []core.CategoryAmount{{
			Name:        core.NoExpensesLabel,
			Amount:      decimal.NewFromInt(1),
			Placeholder: true,
		}}
	}
	return out
}

// Months buckets transactions with a parseable date by YYYY-MM, oldest
// first. When nothing qualifies the month of now is returned with zero
// totals.
func Months(txns []core.Transaction, now time.Time) []core.MonthTotals {
	buckets := make(map[string]*core.MonthTotals)
	for _, t := range txns {
		key, ok := t.Date.Bucket()
		if !ok {
			continue
		}
		b, ok := buckets[key]
		if !ok {
			b = &core.MonthTotals{Key: key, Income: decimal.Zero, Expense: decimal.Zero}
			buckets[key] = b
		}
		switch t.Type {
		case core.Income:
			b.Income = b.Income.Add(t.Amount)
		case core.Expense:
			b.Expense = b.Expense.Add(t.Amount)
		}
	}

	if len(buckets) == 0 {
		return []core.MonthTotals{{
			Key:     now.Format("2006-01"),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}}
	}

	out := make([]core.MonthTotals, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
