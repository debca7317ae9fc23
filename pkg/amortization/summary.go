package amortization

import "time"

// Summary aggregates a generated schedule.
type Summary struct {
	PeriodCount            int       `json:"period_count"`
	BasePayment            float64   `json:"base_payment"`
	TotalPrincipal         float64   `json:"total_principal"`
	TotalInterest          float64   `json:"total_interest"`
	TotalLifeInsurance     float64   `json:"total_life_insurance"`
	TotalPropertyInsurance float64   `json:"total_property_insurance"`
	TotalPaid              float64   `json:"total_paid"`
	FirstDueDate           time.Time `json:"first_due_date"`
	LastDueDate            time.Time `json:"last_due_date"`
}

// Summarize totals the charges of a schedule.
func Summarize(params Parameters, schedule Schedule) Summary {
	summary := Summary{
		PeriodCount: len(schedule),
		BasePayment: params.BasePayment,
	}
	for _, record := range schedule {
		summary.TotalPrincipal += record.Principal
		summary.TotalInterest += record.Interest
		summary.TotalLifeInsurance += record.LifeInsurance
		summary.TotalPropertyInsurance += record.PropertyInsurance
		summary.TotalPaid += record.TotalPayment
	}
	if len(schedule) > 0 {
		summary.FirstDueDate = schedule[0].DueDate
		summary.LastDueDate = schedule[len(schedule)-1].DueDate
	}
	return summary
}
