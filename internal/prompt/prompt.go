// Package prompt collects loan terms interactively from a line-oriented
// reader, giving the user a limited number of attempts per value.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-schedule/internal/config"
	"github.com/iwvelando/mortgage-schedule/pkg/datetime"
	"github.com/iwvelando/mortgage-schedule/pkg/mathutil"
	"github.com/iwvelando/mortgage-schedule/pkg/validation"
	"go.uber.org/zap"
)

var (
	// ErrInvalidNumericInput is returned for blank or non-numeric entries.
	ErrInvalidNumericInput = errors.New("input is not a number")

	// ErrRetryExhausted is returned once every attempt for a value was invalid.
	ErrRetryExhausted = errors.New("maximum number of attempts exceeded, restart the simulator")

	// ErrOutOfRange wraps the *validation.ValidationError of a numeric entry
	// that violates a loan invariant.
	ErrOutOfRange = errors.New("input out of range")
)

// Collector asks for each loan value in turn and echoes accepted values.
type Collector struct {
	scanner *bufio.Scanner
	out     io.Writer
	logger  *zap.Logger
	limits  config.SimulatorConfig
}

// NewCollector creates a Collector reading answers from in and writing
// prompts to out.
func NewCollector(in io.Reader, out io.Writer, logger *zap.Logger, limits config.SimulatorConfig) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		scanner: bufio.NewScanner(in),
		out:     out,
		logger:  logger,
		limits:  limits.Normalize(),
	}
}

// Confirm asks a yes/no question. Anything other than y or yes is a no.
func (c *Collector) Confirm(question string) (bool, error) {
	if _, err := fmt.Fprintf(c.out, "%s [y/N]: ", question); err != nil {
		return false, err
	}
	line, ok, err := c.readLine()
	if err != nil || !ok {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// ReadNumber prompts with message until a finite number is entered or the
// attempt budget runs out.
func (c *Collector) ReadNumber(message string) (float64, error) {
	for attempt := 1; attempt <= c.limits.MaxAttempts; attempt++ {
		if _, err := fmt.Fprintf(c.out, "%s: ", message); err != nil {
			return 0, err
		}
		line, ok, err := c.readLine()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}

		value, err := parseNumber(line)
		if err == nil {
			return value, nil
		}
		c.logger.Debug("rejected input",
			zap.String("op", "prompt.ReadNumber"),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return 0, ErrRetryExhausted
}

// Collect prompts for every loan value in order: property value, down
// payment, annual rate, period count, life insurance and property insurance.
// A value outside its allowed range ends collection immediately. The
// disbursement date is the day of now.
func (c *Collector) Collect(now time.Time) (config.LoanTerms, error) {
	var terms config.LoanTerms

	steps := []struct {
		message string
		label   string
		suffix  string
		check   func(value float64) error
		assign  func(value float64)
	}{
		{
			message: "Enter the property value, e.g. 400000",
			label:   "Property value",
			check:   func(v float64) error { return validation.ValidatePositive("propertyValue", v) },
			assign:  func(v float64) { terms.PropertyValue = v },
		},
		{
			message: "Enter the down payment, e.g. 100000",
			label:   "Down payment",
			check: func(v float64) error {
				if err := validation.ValidatePositive("downPayment", v); err != nil {
					return err
				}
				return validation.ValidateLessThan("downPayment", v, "propertyValue", terms.PropertyValue)
			},
			assign: func(v float64) { terms.DownPayment = v },
		},
		{
			message: "Enter the annual effective rate (%), e.g. 8",
			label:   "Annual rate",
			suffix:  " %",
			check:   func(v float64) error { return validation.ValidatePositive("annualRatePercent", v) },
			assign:  func(v float64) { terms.AnnualRatePercent = v },
		},
		{
			message: fmt.Sprintf("Enter the number of periods (between %d and %d), e.g. 240",
				c.limits.MinPeriods, c.limits.MaxPeriods),
			label: "Periods",
			check: func(v float64) error {
				if v != math.Trunc(v) {
					return validation.NewValidationError("periodCount", validation.RuleRange, v,
						"value must be a whole number of periods")
				}
				return validation.ValidateIntRange("periodCount", int(v), c.limits.MinPeriods, c.limits.MaxPeriods)
			},
			assign: func(v float64) { terms.PeriodCount = int(v) },
		},
		{
			message: "Enter the monthly life insurance rate (%), e.g. 0.03",
			label:   "Monthly life insurance",
			suffix:  " %",
			check:   func(v float64) error { return validation.ValidatePositive("monthlyLifeInsurancePercent", v) },
			assign:  func(v float64) { terms.MonthlyLifeInsurancePercent = v },
		},
		{
			message: "Enter the annual property insurance rate (%), e.g. 0.3",
			label:   "Property insurance",
			suffix:  " %",
			check:   func(v float64) error { return validation.ValidatePositive("annualPropertyInsurancePercent", v) },
			assign:  func(v float64) { terms.AnnualPropertyInsurancePercent = v },
		},
	}

	for _, step := range steps {
		value, err := c.ReadNumber(step.message)
		if err != nil {
			return config.LoanTerms{}, err
		}
		if _, err := fmt.Fprintf(c.out, "%s: %s%s\n", step.label, FormatNumber(value), step.suffix); err != nil {
			return config.LoanTerms{}, err
		}
		if err := step.check(value); err != nil {
			return config.LoanTerms{}, fmt.Errorf("%w: %w", ErrOutOfRange, err)
		}
		step.assign(value)
	}

	terms.DisbursementDate = datetime.Day(now)
	return terms, nil
}

// EchoTerms writes every value of terms in the same form Collect echoes them.
func EchoTerms(w io.Writer, terms config.LoanTerms) error {
	lines := []string{
		"Property value: " + FormatNumber(terms.PropertyValue),
		"Down payment: " + FormatNumber(terms.DownPayment),
		"Annual rate: " + FormatNumber(terms.AnnualRatePercent) + " %",
		"Periods: " + strconv.Itoa(terms.PeriodCount),
		"Monthly life insurance: " + FormatNumber(terms.MonthlyLifeInsurancePercent) + " %",
		"Property insurance: " + FormatNumber(terms.AnnualPropertyInsurancePercent) + " %",
		"Disbursement date: " + terms.DisbursementDate.Format(datetime.DateLayout),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatNumber prints v with the fewest digits that represent it exactly.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// readLine returns the next input line; ok is false at end of input.
func (c *Collector) readLine() (string, bool, error) {
	if c.scanner.Scan() {
		return c.scanner.Text(), true, nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", false, fmt.Errorf("failed to read input: %w", err)
	}
	return "", false, nil
}

func parseNumber(line string) (float64, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0, ErrInvalidNumericInput
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || !mathutil.IsFinite(value) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumericInput, trimmed)
	}
	return value, nil
}
