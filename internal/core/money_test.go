package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCoercion(t *testing.T) {
	cases := []struct {
		in         string
		qty, rate  string
	}{
		{"1", "1", "1"},
		{" 2.50 ", "2.5", "2.5"},
		{"1,5", "1.5", "1.5"},
		{"₹ 40", "40", "40"},
		{"abc", "0", "0"},
		{"", "0", "0"},
		{"NaN", "0", "0"},
		{"-3", "0", "0"},
		{"150", "150", "100"},
		{"1.2.3", "0", "0"},
	}
	for _, tc := range cases {
		if got := CoerceQuantity(tc.in); !got.Equal(decimal.RequireFromString(tc.qty)) {
			t.Fatalf("quantity %q: expected %s, got %s", tc.in, tc.qty, got)
		}
		if got := CoercePrice(tc.in); !got.Equal(decimal.RequireFromString(tc.qty)) {
			t.Fatalf("price %q: expected %s, got %s", tc.in, tc.qty, got)
		}
		if got := CoerceRate(tc.in); !got.Equal(decimal.RequireFromString(tc.rate)) {
			t.Fatalf("rate %q: expected %s, got %s", tc.in, tc.rate, got)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"0", "0.00"},
		{"999", "999.00"},
		{"1000", "1,000.00"},
		{"18172", "18,172.00"},
		{"124500", "1,24,500.00"},
		{"12345678.9", "1,23,45,678.90"},
		{"24.0060", "24.01"},
		{"0.005", "0.01"},
		{"-2500", "-2,500.00"},
	}
	for _, tc := range cases {
		if got := FormatAmount(decimal.RequireFromString(tc.in)); got != tc.out {
			t.Fatalf("%s: expected %q, got %q", tc.in, tc.out, got)
		}
	}
	if got := FormatRupees(decimal.NewFromInt(2950)); got != "₹2,950.00" {
		t.Fatalf("unexpected rupees: %q", got)
	}
	if got := FormatPlain(decimal.RequireFromString("2950.000")); got != "2950" {
		t.Fatalf("unexpected plain: %q", got)
	}
	if got := FormatRate(decimal.RequireFromString("12.5")); got != "12.5%" {
		t.Fatalf("unexpected rate: %q", got)
	}
}
