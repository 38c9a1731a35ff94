// Package money converts between decimal currency strings and integer cents.
// Source data stores amounts as decimal strings; they are converted exactly
// once at the rollup boundary and all downstream arithmetic stays in integer
// minor units.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseCents converts a decimal currency string like "1234.56" to integer
// cents, rounding to the nearest cent.
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

// FormatCents renders integer cents as a two-decimal string.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
