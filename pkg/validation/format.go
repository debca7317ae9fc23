// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/mortgage-schedule/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, constants.OutputFormatYAML:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON,
		constants.OutputFormatYAML, format)
}
