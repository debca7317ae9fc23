// Package amortization computes fixed-rate mortgage amortization schedules:
// rate conversion, the annuity base payment and the period-by-period schedule
// with life and property insurance charges.
package amortization

import "time"

// Terms holds the loan inputs the derived scalars are computed from.
type Terms struct {
	PropertyValue                  float64
	DownPayment                    float64
	AnnualRatePercent              float64
	PeriodCount                    int
	MonthlyLifeInsurancePercent    float64
	AnnualPropertyInsurancePercent float64
	DisbursementDate               time.Time
}

// Parameters are the scalars derived once from Terms and held constant while
// the schedule is generated.
type Parameters struct {
	FinancedAmount               float64   `json:"financed_amount"`
	MonthlyRate                  float64   `json:"monthly_rate"`
	BasePayment                  float64   `json:"base_payment"`
	MonthlyLifeInsuranceFraction float64   `json:"monthly_life_insurance_fraction"`
	MonthlyPropertyInsurance     float64   `json:"monthly_property_insurance"`
	PeriodCount                  int       `json:"period_count"`
	DisbursementDate             time.Time `json:"disbursement_date"`
}

// PeriodRecord is the payment breakdown of one period.
type PeriodRecord struct {
	PeriodNumber      int       `json:"period_number"`
	DueDate           time.Time `json:"due_date"`
	Principal         float64   `json:"principal"`
	Interest          float64   `json:"interest"`
	LifeInsurance     float64   `json:"life_insurance"`
	PropertyInsurance float64   `json:"property_insurance"`
	TotalPayment      float64   `json:"total_payment"`
	RemainingBalance  float64   `json:"remaining_balance"`
}

// Schedule is the ordered list of period records, one per period.
type Schedule []PeriodRecord

// Last returns the final record of the schedule.
func (s Schedule) Last() (PeriodRecord, bool) {
	if len(s) == 0 {
		return PeriodRecord{}, false
	}
	return s[len(s)-1], true
}
