package simulation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/mortgage-schedule/internal/config"
	"github.com/iwvelando/mortgage-schedule/pkg/datetime"
	"github.com/iwvelando/mortgage-schedule/pkg/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func testTerms(periods int) config.LoanTerms {
	return config.LoanTerms{
		PropertyValue:                  400000,
		DownPayment:                    100000,
		AnnualRatePercent:              8,
		PeriodCount:                    periods,
		MonthlyLifeInsurancePercent:    0.03,
		AnnualPropertyInsurancePercent: 0.3,
		DisbursementDate:               datetime.MustParseTime(datetime.DateLayout, "2024-01-15"),
	}
}

func TestRunReferenceLoan(t *testing.T) {
	result, err := Run(context.Background(), zap.NewNop(), testTerms(240))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Schedule) != 240 {
		t.Fatalf("schedule length = %d, expected 240", len(result.Schedule))
	}
	if result.Parameters.FinancedAmount != 300000 {
		t.Errorf("FinancedAmount = %v, expected 300000", result.Parameters.FinancedAmount)
	}
	if math.Abs(result.Parameters.BasePayment-2457.4507) > 0.01 {
		t.Errorf("BasePayment = %v, expected ~2457.45", result.Parameters.BasePayment)
	}

	first := result.Schedule[0]
	if math.Abs(first.LifeInsurance-90) > 1e-9 {
		t.Errorf("first life insurance = %v, expected 90", first.LifeInsurance)
	}
	if math.Abs(first.PropertyInsurance-100) > 1e-9 {
		t.Errorf("first property insurance = %v, expected 100", first.PropertyInsurance)
	}
	if first.DueDate.Format(datetime.DateLayout) != "2024-02-15" {
		t.Errorf("first due date = %s, expected 2024-02-15", first.DueDate.Format(datetime.DateLayout))
	}

	last, _ := result.Schedule.Last()
	if last.RemainingBalance != 0 {
		t.Errorf("final balance = %v, expected 0", last.RemainingBalance)
	}
	if math.Abs(result.Summary.TotalPrincipal-300000) > 1e-3 {
		t.Errorf("TotalPrincipal = %v, expected 300000", result.Summary.TotalPrincipal)
	}
	if result.Terms != testTerms(240) {
		t.Errorf("terms were not carried into the result")
	}
}

func TestRunBoundaryTerms(t *testing.T) {
	tests := []struct {
		name     string
		periods  int
		expected float64
	}{
		{name: "Shortest term", periods: 12, expected: 26057.8219},
		{name: "Longest term", periods: 360, expected: 2143.1939},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(context.Background(), nil, testTerms(tt.periods))
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(result.Schedule) != tt.periods {
				t.Errorf("schedule length = %d, expected %d", len(result.Schedule), tt.periods)
			}
			if math.Abs(result.Parameters.BasePayment-tt.expected) > 0.01 {
				t.Errorf("BasePayment = %v, expected %v", result.Parameters.BasePayment, tt.expected)
			}
		})
	}
}

func TestRunRejectsInvalidTerms(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(terms *config.LoanTerms)
		wantField string
	}{
		{
			name:      "Down payment equals property value",
			mutate:    func(terms *config.LoanTerms) { terms.DownPayment = terms.PropertyValue },
			wantField: "downPayment",
		},
		{
			name:      "Term below minimum",
			mutate:    func(terms *config.LoanTerms) { terms.PeriodCount = 11 },
			wantField: "periodCount",
		},
		{
			name:      "Term above maximum",
			mutate:    func(terms *config.LoanTerms) { terms.PeriodCount = 361 },
			wantField: "periodCount",
		},
		{
			name:      "Negative rate",
			mutate:    func(terms *config.LoanTerms) { terms.AnnualRatePercent = -1 },
			wantField: "annualRatePercent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := testTerms(240)
			tt.mutate(&terms)

			result, err := Run(context.Background(), zap.NewNop(), terms)
			if result != nil {
				t.Errorf("expected no result for invalid terms")
			}
			verr, ok := validation.AsValidationError(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %s, expected %s", verr.Field, tt.wantField)
			}
		})
	}
}

func TestRunWithLimits(t *testing.T) {
	limits := config.SimulatorConfig{MaxAttempts: 3, MinPeriods: 24, MaxPeriods: 120}

	if _, err := RunWithLimits(context.Background(), nil, testTerms(12), limits); err == nil {
		t.Errorf("expected 12 periods to be rejected with a minimum of 24")
	}
	result, err := RunWithLimits(context.Background(), nil, testTerms(120), limits)
	if err != nil {
		t.Fatalf("RunWithLimits() error = %v", err)
	}
	if len(result.Schedule) != 120 {
		t.Errorf("schedule length = %d, expected 120", len(result.Schedule))
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, nil, testTerms(240))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunRecordsSpan(t *testing.T) {
	previous := otel.GetTracerProvider()
	defer otel.SetTracerProvider(previous)

	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	if _, err := Run(context.Background(), nil, testTerms(240)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	terms := testTerms(240)
	terms.PeriodCount = 0
	_, _ = Run(context.Background(), nil, terms)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "simulation.Run" {
		t.Errorf("span name = %s, expected simulation.Run", spans[0].Name())
	}

	found := false
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "loan.period_count" && attr.Value.AsInt64() == 240 {
			found = true
		}
	}
	if !found {
		t.Errorf("span missing loan.period_count attribute")
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("invalid terms should mark the span as failed")
	}
}
