package amortization

import (
	"math"

	"github.com/iwvelando/mortgage-schedule/pkg/constants"
)

// BasePayment calculates the fixed annuity payment covering principal and
// interest, excluding insurance:
//
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// The formula is undefined for r == 0; that case falls back to straight-line
// repayment P/n. Validated loan terms never reach it.
func BasePayment(principal, monthlyRate float64, periodCount int) float64 {
	if periodCount <= 0 {
		return 0
	}
	if monthlyRate == 0 {
		return principal / float64(periodCount)
	}
	power := math.Pow(1+monthlyRate, float64(periodCount))
	return principal * monthlyRate * power / (power - 1)
}

// MonthlyPropertyInsuranceAmount spreads the annual property insurance,
// a percentage of the property value, evenly over twelve months. The amount
// does not depend on the outstanding balance.
func MonthlyPropertyInsuranceAmount(propertyValue, annualPropertyInsurancePercent float64) float64 {
	return propertyValue * MonthlyFractionFromPercent(annualPropertyInsurancePercent) / constants.MonthsPerYear
}

// InterestPayment calculates the interest charged on a balance for one period.
func InterestPayment(balance, monthlyRate float64) float64 {
	return balance * monthlyRate
}

// LifeInsuranceCharge calculates the life insurance charged on a balance for one period.
func LifeInsuranceCharge(balance, monthlyLifeInsuranceFraction float64) float64 {
	return balance * monthlyLifeInsuranceFraction
}

// Derive computes the constant scalars of a schedule from the loan terms.
func Derive(terms Terms) Parameters {
	financed := terms.PropertyValue - terms.DownPayment
	monthlyRate := MonthlyRateFromAnnualPercent(terms.AnnualRatePercent)
	return Parameters{
		FinancedAmount:               financed,
		MonthlyRate:                  monthlyRate,
		BasePayment:                  BasePayment(financed, monthlyRate, terms.PeriodCount),
		MonthlyLifeInsuranceFraction: MonthlyFractionFromPercent(terms.MonthlyLifeInsurancePercent),
		MonthlyPropertyInsurance:     MonthlyPropertyInsuranceAmount(terms.PropertyValue, terms.AnnualPropertyInsurancePercent),
		PeriodCount:                  terms.PeriodCount,
		DisbursementDate:             terms.DisbursementDate,
	}
}
