// Package query turns the transaction collection into the visible subset.
package query

import (
	"errors"
	"slices"
	"strings"

	"pocketwise/internal/core"
)

// All disables the month or category filter.
const All = "all"

// ErrUnknownSort is returned for a sort mode other than the three known ones.
var ErrUnknownSort = errors.New("unknown sort mode")

type SortMode string

const (
	SortLatest     SortMode = "latest"
	SortAmountHigh SortMode = "amountHigh"
	SortAmountLow  SortMode = "amountLow"
)

// ParseSortMode accepts the three sort modes; anything else reports false.
func ParseSortMode(s string) (SortMode, bool) {
	switch m := SortMode(strings.TrimSpace(s)); m {
	case SortLatest, SortAmountHigh, SortAmountLow:
		return m, true
	}
	return "", false
}

// Config is the filter and sort state of the transaction list.
type Config struct {
	Month    string   `json:"month"`
	Category string   `json:"category"`
	Search   string   `json:"search"`
	Sort     SortMode `json:"sort"`
}

// DefaultConfig shows everything, newest first.
func DefaultConfig() Config {
	return Config{Month: All, Category: All, Search: "", Sort: SortLatest}
}

func active(v string) bool {
	return v != "" && v != All
}

// Run applies the month, category and search filters in that order, then
// sorts. It does not modify txns and is deterministic: equal sort keys keep
// their insertion order.
func Run(txns []core.Transaction, cfg Config) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	q := strings.ToLower(strings.TrimSpace(cfg.Search))

	for _, t := range txns {
		if active(cfg.Month) && t.Date.Prefix() != cfg.Month {
			continue
		}
		if active(cfg.Category) && t.Category != cfg.Category {
			continue
		}
		if q != "" && !Matches(t, q) {
			continue
		}
		out = append(out, t)
	}

	switch cfg.Sort {
	case SortLatest:
		slices.SortStableFunc(out, newestFirst)
	case SortAmountHigh:
		slices.SortStableFunc(out, func(a, b core.Transaction) int {
			return b.Amount.Cmp(a.Amount)
		})
	case SortAmountLow:
		slices.SortStableFunc(out, func(a, b core.Transaction) int {
			return a.Amount.Cmp(b.Amount)
		})
	}
	return out
}

// Matches reports whether the lowercased query q occurs in the category,
// note, type or amount of t.
func Matches(t core.Transaction, q string) bool {
	return strings.Contains(strings.ToLower(t.Category), q) ||
		strings.Contains(strings.ToLower(t.Note), q) ||
		strings.Contains(strings.ToLower(t.Type.String()), q) ||
		strings.Contains(t.Amount.String(), q)
}

// newestFirst orders by date descending. Unparseable dates rank below
// every real date.
func newestFirst(a, b core.Transaction) int {
	ta, okA := a.Date.Time()
	tb, okB := b.Date.Time()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return tb.Compare(ta)
}
