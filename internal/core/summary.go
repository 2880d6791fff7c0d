package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoExpensesLabel names the placeholder slice shown when nothing was spent.
const NoExpensesLabel = "No expenses"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
	// Placeholder marks the dummy entry used when there are no expenses.
	Placeholder bool
}

// MonthTotals holds income and expense sub-totals for one YYYY-MM bucket.
type MonthTotals struct {
	Key     string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Totals is the summary of a visible subset.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// MonthLabel turns a YYYY-MM key into a short label such as "Jan 2024".
// Keys that do not parse are returned unchanged.
func MonthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}
