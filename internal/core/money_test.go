package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"12.34", "12.34", true},
		{" 2.50 ", "2.5", true},
		{"0.01", "0.01", true},
		{"-1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"NaN", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatterFormat(t *testing.T) {
	f := NewFormatter("")
	cases := []struct {
		in  decimal.Decimal
		out string
	}{
		{decimal.NewFromInt(1000), "₹1,000"},
		{decimal.RequireFromString("1234.5"), "₹1,234.5"},
		{decimal.Zero, "₹0"},
		{decimal.NewFromInt(-750), "-₹750"},
	}
	for _, tc := range cases {
		if got := f.Format(tc.in); got != tc.out {
			t.Fatalf("%s expected %q, got %q", tc.in, tc.out, got)
		}
	}

	if got := NewFormatter("€").Format(decimal.NewFromInt(5)); got != "€5" {
		t.Fatalf("unexpected custom symbol output %q", got)
	}
}
