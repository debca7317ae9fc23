package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-schedule/internal/config"
	"github.com/iwvelando/mortgage-schedule/pkg/validation"
	"go.uber.org/zap"
)

var now = time.Date(2025, time.March, 10, 18, 45, 0, 0, time.UTC)

func newTestCollector(input string) (*Collector, *bytes.Buffer) {
	var out bytes.Buffer
	return NewCollector(strings.NewReader(input), &out, zap.NewNop(), config.DefaultSimulatorConfig()), &out
}

func TestCollect(t *testing.T) {
	collector, out := newTestCollector("400000\n100000\n8\n240\n0.03\n0.3\n")

	terms, err := collector.Collect(now)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	expected := config.LoanTerms{
		PropertyValue:                  400000,
		DownPayment:                    100000,
		AnnualRatePercent:              8,
		PeriodCount:                    240,
		MonthlyLifeInsurancePercent:    0.03,
		AnnualPropertyInsurancePercent: 0.3,
		DisbursementDate:               time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
	if terms != expected {
		t.Errorf("Collect() = %+v, expected %+v", terms, expected)
	}

	for _, echo := range []string{
		"Property value: 400000\n",
		"Down payment: 100000\n",
		"Annual rate: 8 %\n",
		"Periods: 240\n",
		"Monthly life insurance: 0.03 %\n",
		"Property insurance: 0.3 %\n",
	} {
		if !strings.Contains(out.String(), echo) {
			t.Errorf("output missing echo %q", echo)
		}
	}
}

func TestCollectRetriesInvalidInput(t *testing.T) {
	collector, _ := newTestCollector("\nabc\n400000\n100000\n8\n240\n0.03\n0.3\n")

	terms, err := collector.Collect(now)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if terms.PropertyValue != 400000 {
		t.Errorf("PropertyValue = %v, expected 400000", terms.PropertyValue)
	}
}

func TestCollectRetryExhausted(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Three blank entries", input: "\n \n\t\n400000\n"},
		{name: "Three non-numeric entries", input: "abc\n1e\nNaN\n"},
		{name: "Input ends early", input: "abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector, out := newTestCollector(tt.input)
			_, err := collector.Collect(now)
			if !errors.Is(err, ErrRetryExhausted) {
				t.Fatalf("expected ErrRetryExhausted, got %v", err)
			}
			if strings.Contains(out.String(), "Property value:") {
				t.Errorf("no value should have been echoed")
			}
		})
	}
}

func TestCollectOutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
		wantRule  string
	}{
		{
			name:      "Zero property value",
			input:     "0\n",
			wantField: "propertyValue",
			wantRule:  validation.RulePositive,
		},
		{
			name:      "Down payment equals property value",
			input:     "400000\n400000\n",
			wantField: "downPayment",
			wantRule:  validation.RuleLessThan,
		},
		{
			name:      "Negative rate",
			input:     "400000\n100000\n-8\n",
			wantField: "annualRatePercent",
			wantRule:  validation.RulePositive,
		},
		{
			name:      "Too few periods",
			input:     "400000\n100000\n8\n11\n",
			wantField: "periodCount",
			wantRule:  validation.RuleRange,
		},
		{
			name:      "Too many periods",
			input:     "400000\n100000\n8\n361\n",
			wantField: "periodCount",
			wantRule:  validation.RuleRange,
		},
		{
			name:      "Fractional periods",
			input:     "400000\n100000\n8\n240.5\n",
			wantField: "periodCount",
			wantRule:  validation.RuleRange,
		},
		{
			name:      "Zero property insurance",
			input:     "400000\n100000\n8\n240\n0.03\n0\n",
			wantField: "annualPropertyInsurancePercent",
			wantRule:  validation.RulePositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector, _ := newTestCollector(tt.input)
			_, err := collector.Collect(now)
			if !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("expected ErrOutOfRange, got %v", err)
			}
			verr, ok := validation.AsValidationError(err)
			if !ok {
				t.Fatalf("expected wrapped validation error, got %v", err)
			}
			if verr.Field != tt.wantField || verr.Rule != tt.wantRule {
				t.Errorf("got %s/%s, expected %s/%s", verr.Field, verr.Rule, tt.wantField, tt.wantRule)
			}
		})
	}
}

func TestCollectCustomAttempts(t *testing.T) {
	var out bytes.Buffer
	limits := config.SimulatorConfig{MaxAttempts: 1, MinPeriods: 12, MaxPeriods: 360}
	collector := NewCollector(strings.NewReader("abc\n400000\n"), &out, nil, limits)

	if _, err := collector.ReadNumber("value"); !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("expected ErrRetryExhausted after one attempt, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{input: "y\n", expected: true},
		{input: "YES\n", expected: true},
		{input: "n\n", expected: false},
		{input: "\n", expected: false},
		{input: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			collector, _ := newTestCollector(tt.input)
			got, err := collector.Confirm("Simulate with sample data?")
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Confirm() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestEchoTerms(t *testing.T) {
	var out bytes.Buffer
	terms := config.DemoLoanTerms(now)

	if err := EchoTerms(&out, terms); err != nil {
		t.Fatalf("EchoTerms() error = %v", err)
	}
	expected := "Property value: 400000\n" +
		"Down payment: 100000\n" +
		"Annual rate: 8 %\n" +
		"Periods: 240\n" +
		"Monthly life insurance: 0.03 %\n" +
		"Property insurance: 0.3 %\n" +
		"Disbursement date: 2025-03-10\n"
	if out.String() != expected {
		t.Errorf("EchoTerms() =\n%s\nexpected\n%s", out.String(), expected)
	}
}
