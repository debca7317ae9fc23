package amortization

import (
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/mortgage-schedule/pkg/constants"
	"github.com/iwvelando/mortgage-schedule/pkg/datetime"
	"github.com/iwvelando/mortgage-schedule/pkg/mathutil"
	"github.com/iwvelando/mortgage-schedule/pkg/validation"
	"go.uber.org/zap"
)

// Validate checks the preconditions of schedule generation. Terms that passed
// loan validation always produce valid Parameters; this guards callers that
// build Parameters by hand.
func (p Parameters) Validate() error {
	if err := validation.ValidatePositive("financed_amount", p.FinancedAmount); err != nil {
		return err
	}
	if err := validation.ValidatePositive("monthly_rate", p.MonthlyRate); err != nil {
		return err
	}
	if err := validation.ValidatePositive("base_payment", p.BasePayment); err != nil {
		return err
	}
	if !p.Amortizes() {
		return validation.NewValidationError("monthly_rate", validation.RuleAmortizable, p.MonthlyRate,
			"rate is too high for the base payment to reduce the balance")
	}
	if p.PeriodCount < 1 {
		return validation.NewValidationError("period_count", validation.RulePositive, p.PeriodCount,
			"value must be at least 1")
	}
	charges := []struct {
		name  string
		value float64
	}{
		{"monthly_life_insurance_fraction", p.MonthlyLifeInsuranceFraction},
		{"monthly_property_insurance", p.MonthlyPropertyInsurance},
	}
	for _, c := range charges {
		if !mathutil.IsFinite(c.value) || c.value < 0 {
			return validation.NewValidationError(c.name, validation.RuleFinite, c.value,
				"value must be a finite non-negative number")
		}
	}
	if p.DisbursementDate.IsZero() {
		return validation.NewValidationError("disbursement_date", validation.RuleRequired, nil,
			"value is required")
	}
	return nil
}

// Amortizes reports whether the first period lowers the financed amount. At
// very high rates over long terms the principal share of the base payment
// falls below the float64 resolution of the balance and the fold would never
// reduce it.
func (p Parameters) Amortizes() bool {
	principal := p.BasePayment - InterestPayment(p.FinancedAmount, p.MonthlyRate)
	return principal > 0 && p.FinancedAmount-principal < p.FinancedAmount
}

// ScheduleGenerator walks the periods of a loan and produces its schedule.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// periodState is what one period hands to the next.
type periodState struct {
	balance float64
	dueDate time.Time
}

// Generate creates the complete schedule for the given parameters. It is a
// fold over periods 1..PeriodCount carrying the outstanding balance and the
// previous due date; the same Parameters always yield the same Schedule.
func (g *ScheduleGenerator) Generate(params Parameters) (Schedule, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("cannot generate schedule: %w", err)
	}

	g.logger.Debug("generating amortization schedule",
		zap.String("op", "amortization.Generate"),
		zap.Float64("financed_amount", params.FinancedAmount),
		zap.Float64("monthly_rate", params.MonthlyRate),
		zap.Float64("base_payment", params.BasePayment),
		zap.Int("periods", params.PeriodCount),
	)

	schedule := make(Schedule, 0, params.PeriodCount)
	state := periodState{balance: params.FinancedAmount, dueDate: params.DisbursementDate}
	for period := 1; period <= params.PeriodCount; period++ {
		var record PeriodRecord
		record, state = nextPeriod(params, period, state)
		schedule = append(schedule, record)
	}

	last, _ := schedule.Last()
	g.logger.Debug("amortization schedule generated",
		zap.String("op", "amortization.Generate"),
		zap.Int("periods", len(schedule)),
		zap.Time("last_due_date", last.DueDate),
		zap.Float64("final_balance", last.RemainingBalance),
	)

	return schedule, nil
}

// nextPeriod applies one period's transition to the carried state. Interest
// and life insurance are assessed on the balance outstanding at the start of
// the period.
func nextPeriod(params Parameters, period int, prev periodState) (PeriodRecord, periodState) {
	life := LifeInsuranceCharge(prev.balance, params.MonthlyLifeInsuranceFraction)
	interest := InterestPayment(prev.balance, params.MonthlyRate)
	principal := params.BasePayment - interest
	balance := prev.balance - principal
	dueDate := datetime.AddMonths(prev.dueDate, 1)

	if period == params.PeriodCount && math.Abs(balance) <= params.FinancedAmount*constants.BalanceResidueRatio {
		// Floating-point residue of an exactly amortized loan.
		balance = 0
	}

	record := PeriodRecord{
		PeriodNumber:      period,
		DueDate:           dueDate,
		Principal:         principal,
		Interest:          interest,
		LifeInsurance:     life,
		PropertyInsurance: params.MonthlyPropertyInsurance,
		TotalPayment:      params.BasePayment + life + params.MonthlyPropertyInsurance,
		RemainingBalance:  balance,
	}
	return record, periodState{balance: balance, dueDate: dueDate}
}
