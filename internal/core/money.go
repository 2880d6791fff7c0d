// Package core provides money parsing and formatting utilities.
//
// This file contains functions for parsing monetary amounts from form input
// and rendering them with digit grouping for display.
package core

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is prepended to formatted amounts.
const DefaultCurrencySymbol = "₹"

// ParseAmount converts user input into a positive decimal amount.
//
// Surrounding whitespace is ignored. Zero, negative, non-numeric and
// non-finite values are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount(" 1000 ") -> 1000, nil
//	ParseAmount("0") -> error
//	ParseAmount("abc") -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Formatter renders amounts for display.
type Formatter struct {
	Symbol string
}

// NewFormatter returns a formatter using symbol, or the default symbol when
// symbol is empty.
func NewFormatter(symbol string) Formatter {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return Formatter{Symbol: symbol}
}

// Format groups thousands and keeps at most two fraction digits, e.g.
// "₹1,234.5" or "-₹750".
func (f Formatter) Format(d decimal.Decimal) string {
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}
	s := f.Symbol + humanize.CommafWithDigits(d.Round(2).InexactFloat64(), 2)
	if neg {
		return "-" + s
	}
	return s
}
