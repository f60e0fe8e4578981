// Package core provides money parsing and handling utilities.
//
// This file contains the fail-soft coercion used for editor input and the
// display formatting for rupee amounts. All arithmetic stays in
// decimal.Decimal; rounding happens only in the Format* functions.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const displayPlaces = 2

var maxRate = decimal.NewFromInt(MaxGSTRate)

// ParseDecimal parses a user-supplied number. It accepts a dot or a comma as
// the decimal separator and ignores surrounding spaces and a leading rupee
// sign. Invalid input yields ok=false.
func ParseDecimal(s string) (d decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// coerceNonNegative maps unparsable or negative input to zero.
func coerceNonNegative(raw string) decimal.Decimal {
	v, ok := ParseDecimal(raw)
	if !ok || v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// CoerceQuantity converts editor input into a quantity (>= 0).
func CoerceQuantity(raw string) decimal.Decimal {
	return coerceNonNegative(raw)
}

// CoercePrice converts editor input into a unit price (>= 0).
func CoercePrice(raw string) decimal.Decimal {
	return coerceNonNegative(raw)
}

// CoerceRate converts editor input into a GST percentage clamped to 0-100.
func CoerceRate(raw string) decimal.Decimal {
	v := coerceNonNegative(raw)
	if v.GreaterThan(maxRate) {
		return maxRate
	}
	return v
}

// RoundForDisplay applies the half-up two-decimal rounding used on output.
func RoundForDisplay(d decimal.Decimal) decimal.Decimal {
	return d.Round(displayPlaces)
}

// FormatAmount renders d with Indian digit grouping and two decimals,
// e.g. 124500 -> "1,24,500.00".
func FormatAmount(d decimal.Decimal) string {
	s := RoundForDisplay(d).StringFixed(displayPlaces)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	out := groupIndian(intPart) + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatRupees is FormatAmount with the rupee sign.
func FormatRupees(d decimal.Decimal) string {
	s := FormatAmount(d)
	if strings.HasPrefix(s, "-") {
		return "-₹" + s[1:]
	}
	return "₹" + s
}

// FormatPlain renders d rounded for display without grouping or trailing
// zeros, e.g. 2950.00 -> "2950". Used in share text.
func FormatPlain(d decimal.Decimal) string {
	return RoundForDisplay(d).String()
}

// FormatRate renders a percentage, e.g. 18 -> "18%", 12.5 -> "12.5%".
func FormatRate(d decimal.Decimal) string {
	return d.String() + "%"
}

// FormatQuantity renders a quantity without trailing zeros.
func FormatQuantity(d decimal.Decimal) string {
	return d.String()
}

// groupIndian groups digits as 12,34,567: the last three, then pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
