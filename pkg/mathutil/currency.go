// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/mortgage-schedule/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// Cents converts a computed amount into a decimal rounded half away from zero
// to whole cents. Presentation only; the engine works on float64.
func Cents(val float64) decimal.Decimal {
	return decimal.NewFromFloat(val).Round(constants.CentPlaces)
}

// SumCents adds the given amounts after rounding each to cents, which is how
// a borrower sees the totals on a statement.
func SumCents(values ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(Cents(v))
	}
	return total
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsInf(val, 0) && !math.IsNaN(val)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// WithinRelative checks whether val is within ratio*scale of target.
func WithinRelative(val, target, scale, ratio float64) bool {
	return math.Abs(val-target) <= math.Abs(scale)*ratio
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}
