package amortization

import (
	"math"

	"github.com/iwvelando/mortgage-schedule/pkg/constants"
)

// MonthlyRateFromAnnualPercent converts an annual effective rate expressed as
// a percentage (TEA) into the equivalent effective monthly rate (TEM):
// (1 + tea)^(1/12) - 1. NaN and infinite inputs propagate.
func MonthlyRateFromAnnualPercent(annualRatePercent float64) float64 {
	tea := MonthlyFractionFromPercent(annualRatePercent)
	return math.Pow(1+tea, 1.0/constants.MonthsPerYear) - 1
}

// MonthlyFractionFromPercent turns a percentage into a fraction.
func MonthlyFractionFromPercent(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}
