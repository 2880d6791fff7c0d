package query

import (
	"slices"
	"sort"

	"pocketwise/internal/core"
)

// DefaultCategories are offered in the category filter even before any
// transaction uses them.
var DefaultCategories = []string{"Food", "Groceries", "Transport", "Rent", "Entertainment", "Salary", "Loan", "Other"}

// Options lists the values available to the month and category filters.
type Options struct {
	Months     []string `json:"months"`
	Categories []string `json:"categories"`
}

// DeriveOptions computes both filter option lists.
func DeriveOptions(txns []core.Transaction, defaults []string) Options {
	return Options{
		Months:     Months(txns),
		Categories: Categories(txns, defaults),
	}
}

// Months returns the distinct YYYY-MM prefixes of the transaction dates,
// most recent first.
func Months(txns []core.Transaction) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, t := range txns {
		key := t.Date.Prefix()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Categories returns the union of defaults and every category in use,
// sorted alphabetically.
func Categories(txns []core.Transaction, defaults []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(c string) {
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, c := range defaults {
		add(c)
	}
	for _, t := range txns {
		add(t.Category)
	}
	slices.Sort(out)
	return out
}
