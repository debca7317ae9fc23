package validation

import (
	"errors"
	"fmt"
)

// ErrValidation matches any *ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError names the input field and the rule it violated.
type ValidationError struct {
	Field   string      `json:"field"`
	Rule    string      `json:"rule"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, rule string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Rule: rule, Value: value, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) succeed for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AsValidationError extracts a *ValidationError from err's chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
