package config

import (
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-schedule/pkg/amortization"
	"github.com/iwvelando/mortgage-schedule/pkg/constants"
	"github.com/iwvelando/mortgage-schedule/pkg/datetime"
	"github.com/iwvelando/mortgage-schedule/pkg/mathutil"
	"github.com/iwvelando/mortgage-schedule/pkg/validation"
)

// LoanConfig is the loan as written in a config file or request body.
type LoanConfig struct {
	PropertyValue                  float64 `json:"propertyValue" yaml:"propertyValue"`
	DownPayment                    float64 `json:"downPayment" yaml:"downPayment"`
	AnnualRatePercent              float64 `json:"annualRatePercent" yaml:"annualRatePercent"`
	PeriodCount                    int     `json:"periodCount" yaml:"periodCount"`
	MonthlyLifeInsurancePercent    float64 `json:"monthlyLifeInsurancePercent" yaml:"monthlyLifeInsurancePercent"`
	AnnualPropertyInsurancePercent float64 `json:"annualPropertyInsurancePercent" yaml:"annualPropertyInsurancePercent"`
	DisbursementDate               string  `json:"disbursementDate,omitempty" yaml:"disbursementDate,omitempty"` // YYYY-MM-DD, empty means today
}

// LoanTerms are the inputs of a mortgage simulation. Values are never
// modified after construction.
type LoanTerms struct {
	PropertyValue                  float64   `json:"propertyValue" validate:"gt=0"`
	DownPayment                    float64   `json:"downPayment" validate:"gt=0,ltfield=PropertyValue"`
	AnnualRatePercent              float64   `json:"annualRatePercent" validate:"gt=0"`
	PeriodCount                    int       `json:"periodCount" validate:"required"`
	MonthlyLifeInsurancePercent    float64   `json:"monthlyLifeInsurancePercent" validate:"gt=0"`
	AnnualPropertyInsurancePercent float64   `json:"annualPropertyInsurancePercent" validate:"gt=0"`
	DisbursementDate               time.Time `json:"disbursementDate"`
}

// ToLoanTerms parses the loan configuration; an empty disbursement date
// resolves to the day of now.
func (c LoanConfig) ToLoanTerms(now time.Time) (LoanTerms, error) {
	disbursement, err := datetime.ParseDate(c.DisbursementDate, now)
	if err != nil {
		return LoanTerms{}, validation.NewValidationError("disbursementDate", validation.RuleDate,
			c.DisbursementDate, err.Error())
	}
	return LoanTerms{
		PropertyValue:                  c.PropertyValue,
		DownPayment:                    c.DownPayment,
		AnnualRatePercent:              c.AnnualRatePercent,
		PeriodCount:                    c.PeriodCount,
		MonthlyLifeInsurancePercent:    c.MonthlyLifeInsurancePercent,
		AnnualPropertyInsurancePercent: c.AnnualPropertyInsurancePercent,
		DisbursementDate:               disbursement,
	}, nil
}

// ToLoanConfig renders the terms back into their file form.
func (t LoanTerms) ToLoanConfig() LoanConfig {
	return LoanConfig{
		PropertyValue:                  t.PropertyValue,
		DownPayment:                    t.DownPayment,
		AnnualRatePercent:              t.AnnualRatePercent,
		PeriodCount:                    t.PeriodCount,
		MonthlyLifeInsurancePercent:    t.MonthlyLifeInsurancePercent,
		AnnualPropertyInsurancePercent: t.AnnualPropertyInsurancePercent,
		DisbursementDate:               t.DisbursementDate.Format(datetime.DateLayout),
	}
}

// DemoLoanTerms returns the sample loan the simulator offers instead of
// prompting: a 400000 property with 100000 down at 8% over 240 months.
func DemoLoanTerms(disbursement time.Time) LoanTerms {
	return LoanTerms{
		PropertyValue:                  constants.DemoPropertyValue,
		DownPayment:                    constants.DemoDownPayment,
		AnnualRatePercent:              constants.DemoAnnualRatePercent,
		PeriodCount:                    constants.DemoPeriodCount,
		MonthlyLifeInsurancePercent:    constants.DemoMonthlyLifeInsurancePercent,
		AnnualPropertyInsurancePercent: constants.DemoAnnualPropertyInsurancePercent,
		DisbursementDate:               datetime.Day(disbursement),
	}
}

// Validate checks every invariant of the terms and reports the first
// violation as a *validation.ValidationError.
func (t LoanTerms) Validate(limits SimulatorConfig) error {
	limits = limits.Normalize()

	finite := []struct {
		name  string
		value float64
	}{
		{"propertyValue", t.PropertyValue},
		{"downPayment", t.DownPayment},
		{"annualRatePercent", t.AnnualRatePercent},
		{"monthlyLifeInsurancePercent", t.MonthlyLifeInsurancePercent},
		{"annualPropertyInsurancePercent", t.AnnualPropertyInsurancePercent},
	}
	for _, f := range finite {
		if !mathutil.IsFinite(f.value) {
			return validation.NewValidationError(f.name, validation.RuleFinite, fmt.Sprint(f.value),
				"value is not a finite number")
		}
	}

	if err := validation.Struct(t); err != nil {
		return err
	}
	if err := validation.ValidateIntRange("periodCount", t.PeriodCount, limits.MinPeriods, limits.MaxPeriods); err != nil {
		return err
	}
	if t.DisbursementDate.IsZero() {
		return validation.NewValidationError("disbursementDate", validation.RuleRequired, nil, "value is required")
	}
	if !amortization.Derive(t.ToAmortizationTerms()).Amortizes() {
		return validation.NewValidationError("annualRatePercent", validation.RuleAmortizable, t.AnnualRatePercent,
			fmt.Sprintf("rate is too high to amortize the loan over %d periods", t.PeriodCount))
	}
	return nil
}

// FinancedAmount is the part of the property value covered by the loan.
func (t LoanTerms) FinancedAmount() float64 {
	return t.PropertyValue - t.DownPayment
}

// ToAmortizationTerms converts the terms for the amortization engine.
func (t LoanTerms) ToAmortizationTerms() amortization.Terms {
	return amortization.Terms{
		PropertyValue:                  t.PropertyValue,
		DownPayment:                    t.DownPayment,
		AnnualRatePercent:              t.AnnualRatePercent,
		PeriodCount:                    t.PeriodCount,
		MonthlyLifeInsurancePercent:    t.MonthlyLifeInsurancePercent,
		AnnualPropertyInsurancePercent: t.AnnualPropertyInsurancePercent,
		DisbursementDate:               t.DisbursementDate,
	}
}
