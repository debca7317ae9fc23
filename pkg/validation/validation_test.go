package validation

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

type sampleTerms struct {
	PropertyValue float64 `json:"propertyValue" validate:"gt=0"`
	DownPayment   float64 `json:"downPayment" validate:"gt=0,ltfield=PropertyValue"`
	Periods       int     `json:"periodCount" validate:"required"`
	Internal      string  `json:"-"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     sampleTerms
		wantField string
		wantRule  string
	}{
		{
			name:  "Valid",
			input: sampleTerms{PropertyValue: 400000, DownPayment: 100000, Periods: 240},
		},
		{
			name:      "Zero property value",
			input:     sampleTerms{PropertyValue: 0, DownPayment: 100000, Periods: 240},
			wantField: "propertyValue",
			wantRule:  "gt",
		},
		{
			name:      "Down payment equal to property value",
			input:     sampleTerms{PropertyValue: 400000, DownPayment: 400000, Periods: 240},
			wantField: "downPayment",
			wantRule:  "ltfield",
		},
		{
			name:      "Missing periods",
			input:     sampleTerms{PropertyValue: 400000, DownPayment: 100000},
			wantField: "periodCount",
			wantRule:  "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Struct() unexpected error: %v", err)
				}
				return
			}
			verr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("Struct() expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %s, expected %s", verr.Field, tt.wantField)
			}
			if verr.Rule != tt.wantRule {
				t.Errorf("Rule = %s, expected %s", verr.Rule, tt.wantRule)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("errors.Is(err, ErrValidation) should be true")
			}
		})
	}
}

func TestStructLessThanMessage(t *testing.T) {
	err := Struct(sampleTerms{PropertyValue: 1, DownPayment: 2, Periods: 1})
	if err == nil || err.Error() != "downPayment: value must be less than propertyValue" {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		wantRule string
	}{
		{"Positive", 8, ""},
		{"Zero", 0, RulePositive},
		{"Negative", -1, RulePositive},
		{"NaN", math.NaN(), RuleFinite},
		{"Infinity", math.Inf(1), RuleFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("annualRatePercent", tt.value)
			if tt.wantRule == "" {
				if err != nil {
					t.Errorf("ValidatePositive() unexpected error: %v", err)
				}
				return
			}
			verr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Rule != tt.wantRule || verr.Field != "annualRatePercent" {
				t.Errorf("got %+v, expected rule %s", verr, tt.wantRule)
			}
		})
	}
}

func TestValidateIntRange(t *testing.T) {
	tests := []struct {
		value   int
		wantErr bool
	}{
		{11, true},
		{12, false},
		{240, false},
		{360, false},
		{361, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("periods_%d", tt.value), func(t *testing.T) {
			err := ValidateIntRange("periodCount", tt.value, 12, 360)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIntRange(%d) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLessThan(t *testing.T) {
	if err := ValidateLessThan("downPayment", 100, "propertyValue", 400); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidateLessThan("downPayment", 400, "propertyValue", 400)
	if verr, ok := AsValidationError(err); !ok || verr.Rule != RuleLessThan {
		t.Errorf("expected ltfield violation, got %v", err)
	}
}

func TestValidationErrorWrapping(t *testing.T) {
	base := NewValidationError("periodCount", RuleRange, 400, "value must be between 12 and 360")
	wrapped := fmt.Errorf("invalid loan terms: %w", base)

	if !errors.Is(wrapped, ErrValidation) {
		t.Errorf("wrapped error should match ErrValidation")
	}
	verr, ok := AsValidationError(wrapped)
	if !ok || verr.Field != "periodCount" {
		t.Errorf("AsValidationError() = %+v, %v", verr, ok)
	}
	if base.Error() != "periodCount: value must be between 12 and 360" {
		t.Errorf("unexpected message %q", base.Error())
	}
}
