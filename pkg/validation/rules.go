package validation

import (
	"fmt"

	"github.com/iwvelando/mortgage-schedule/pkg/mathutil"
)

// Rule names reported in ValidationError.Rule.
const (
	RuleFinite   = "finite"
	RulePositive = "gt"
	RuleRange    = "range"
	RuleLessThan = "ltfield"
	RuleRequired = "required"
	RuleDate     = "date"

	RuleAmortizable = "amortizable"
)

// ValidatePositive checks that value is a finite number strictly greater than zero.
func ValidatePositive(name string, value float64) error {
	if !mathutil.IsFinite(value) {
		return NewValidationError(name, RuleFinite, value, "value is not a finite number")
	}
	if value <= 0 {
		return NewValidationError(name, RulePositive, value, "value must be greater than 0")
	}
	return nil
}

// ValidateIntRange checks that value lies in [minInclusive, maxInclusive].
func ValidateIntRange(name string, value, minInclusive, maxInclusive int) error {
	if value < minInclusive || value > maxInclusive {
		return NewValidationError(name, RuleRange, value,
			fmt.Sprintf("value must be between %d and %d", minInclusive, maxInclusive))
	}
	return nil
}

// ValidateLessThan checks that value is strictly below the named limit.
func ValidateLessThan(name string, value float64, limitName string, limit float64) error {
	if value >= limit {
		return NewValidationError(name, RuleLessThan, value,
			fmt.Sprintf("value must be less than %s", limitName))
	}
	return nil
}
