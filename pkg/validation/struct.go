package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct runs the `validate` struct tags of s and reports the first violation
// as a *ValidationError. Fields are named by their json tag.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("failed to validate %T: %w", s, err)
	}
	return fromFieldError(fieldErrs[0])
}

func fromFieldError(fe validator.FieldError) *ValidationError {
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "value is required"
	case "gt":
		msg = fmt.Sprintf("value must be greater than %s", fe.Param())
	case "gte", "min":
		msg = fmt.Sprintf("value must be at least %s", fe.Param())
	case "lte", "max":
		msg = fmt.Sprintf("value must be at most %s", fe.Param())
	case "ltfield":
		msg = fmt.Sprintf("value must be less than %s", fieldLabel(fe))
	case "oneof":
		msg = fmt.Sprintf("value must be one of [%s]", fe.Param())
	default:
		msg = fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
	return NewValidationError(fe.Field(), fe.Tag(), fe.Value(), msg)
}

// fieldLabel names the field referenced by a cross-field rule such as
// ltfield=PropertyValue, in the lower camel case used by the json tags.
func fieldLabel(fe validator.FieldError) string {
	param := fe.Param()
	if param == "" {
		return param
	}
	return strings.ToLower(param[:1]) + param[1:]
}
