// Package output provides utilities for formatting and displaying simulation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/mortgage-schedule/internal/simulation"
	"github.com/iwvelando/mortgage-schedule/pkg/amortization"
	"github.com/iwvelando/mortgage-schedule/pkg/constants"
	"github.com/iwvelando/mortgage-schedule/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Write renders result in the named format.
func Write(w io.Writer, format string, result *simulation.Result) error {
	switch format {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, result)
	case constants.OutputFormatCSV:
		return CsvFormat(w, result)
	case constants.OutputFormatJSON:
		return JSONFormat(w, result)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, result)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, result *simulation.Result) error {
	p := message.NewPrinter(language.English)
	params := result.Parameters
	terms := result.Terms

	_, _ = p.Fprintf(w, "--- Mortgage schedule simulation ---\n")
	_, _ = p.Fprintf(w, "Property value:         %s\n", amount(p, terms.PropertyValue))
	_, _ = p.Fprintf(w, "Down payment:           %s\n", amount(p, terms.DownPayment))
	_, _ = p.Fprintf(w, "Financed amount:        %s\n", amount(p, params.FinancedAmount))
	_, _ = p.Fprintf(w, "Annual rate:            %s %%\n", strconv.FormatFloat(terms.AnnualRatePercent, 'f', -1, 64))
	_, _ = p.Fprintf(w, "Monthly rate:           %.6f %%\n", params.MonthlyRate*constants.PercentageMultiplier)
	_, _ = p.Fprintf(w, "Periods:                %d\n", params.PeriodCount)
	_, _ = p.Fprintf(w, "Base payment:           %s\n", amount(p, params.BasePayment))
	_, _ = p.Fprintf(w, "Property insurance:     %s\n", amount(p, params.MonthlyPropertyInsurance))
	_, _ = p.Fprintf(w, "Disbursement date:      %s\n\n", params.DisbursementDate.Format(constants.DateLayout))

	_, _ = p.Fprintf(w, "Period | Due Date   | Principal | Interest | Life Insurance | Property Insurance | Total Payment | Balance\n")
	_, _ = p.Fprintf(w, "______ | __________ | _________ | ________ | ______________ | __________________ | _____________ | _______\n")
	for _, record := range result.Schedule {
		_, err := p.Fprintf(w, "%6d | %s | %s | %s | %s | %s | %s | %s\n",
			record.PeriodNumber,
			record.DueDate.Format(constants.DateLayout),
			amount(p, record.Principal),
			amount(p, record.Interest),
			amount(p, record.LifeInsurance),
			amount(p, record.PropertyInsurance),
			amount(p, record.TotalPayment),
			amount(p, record.RemainingBalance),
		)
		if err != nil {
			return err
		}
	}

	summary := result.Summary
	_, _ = p.Fprintf(w, "\nTotals\n")
	_, _ = p.Fprintf(w, "  Principal:            %s\n", amount(p, summary.TotalPrincipal))
	_, _ = p.Fprintf(w, "  Interest:             %s\n", amount(p, summary.TotalInterest))
	_, _ = p.Fprintf(w, "  Life insurance:       %s\n", amount(p, summary.TotalLifeInsurance))
	_, _ = p.Fprintf(w, "  Property insurance:   %s\n", amount(p, summary.TotalPropertyInsurance))
	_, err := p.Fprintf(w, "  Paid:                 %s\n", amount(p, summary.TotalPaid))
	return err
}

// amount prints v rounded to cents with thousands separators.
func amount(p *message.Printer, v float64) string {
	return p.Sprintf("%.2f", mathutil.Cents(v).InexactFloat64())
}

var csvHeader = []string{
	"period", "due_date", "principal", "interest", "life_insurance",
	"property_insurance", "total_payment", "remaining_balance",
}

// CsvFormat outputs the schedule in comma-separated value format.
func CsvFormat(w io.Writer, result *simulation.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, record := range result.Schedule {
		row := []string{
			strconv.Itoa(record.PeriodNumber),
			record.DueDate.Format(constants.DateLayout),
			mathutil.Cents(record.Principal).StringFixed(constants.CentPlaces),
			mathutil.Cents(record.Interest).StringFixed(constants.CentPlaces),
			mathutil.Cents(record.LifeInsurance).StringFixed(constants.CentPlaces),
			mathutil.Cents(record.PropertyInsurance).StringFixed(constants.CentPlaces),
			mathutil.Cents(record.TotalPayment).StringFixed(constants.CentPlaces),
			mathutil.Cents(record.RemainingBalance).StringFixed(constants.CentPlaces),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// JSONFormat outputs the cent-rounded result as indented JSON.
func JSONFormat(w io.Writer, result *simulation.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Present(result))
}

// YAMLFormat outputs the cent-rounded result as YAML.
func YAMLFormat(w io.Writer, result *simulation.Result) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(Present(result)); err != nil {
		return err
	}
	return encoder.Close()
}

// PresentedResult is a simulation result with amounts rounded to cents and
// dates in YYYY-MM-DD form.
type PresentedResult struct {
	Terms      PresentedTerms    `json:"terms" yaml:"terms"`
	Parameters PresentedParams   `json:"parameters" yaml:"parameters"`
	Schedule   []PresentedPeriod `json:"schedule" yaml:"schedule"`
	Summary    PresentedSummary  `json:"summary" yaml:"summary"`
}

// PresentedTerms echoes the loan inputs.
type PresentedTerms struct {
	PropertyValue                  float64 `json:"property_value" yaml:"property_value"`
	DownPayment                    float64 `json:"down_payment" yaml:"down_payment"`
	AnnualRatePercent              float64 `json:"annual_rate_percent" yaml:"annual_rate_percent"`
	PeriodCount                    int     `json:"period_count" yaml:"period_count"`
	MonthlyLifeInsurancePercent    float64 `json:"monthly_life_insurance_percent" yaml:"monthly_life_insurance_percent"`
	AnnualPropertyInsurancePercent float64 `json:"annual_property_insurance_percent" yaml:"annual_property_insurance_percent"`
	DisbursementDate               string  `json:"disbursement_date" yaml:"disbursement_date"`
}

// PresentedParams holds the derived loan scalars. The monthly rate is not
// rounded.
type PresentedParams struct {
	FinancedAmount           float64 `json:"financed_amount" yaml:"financed_amount"`
	MonthlyRate              float64 `json:"monthly_rate" yaml:"monthly_rate"`
	BasePayment              float64 `json:"base_payment" yaml:"base_payment"`
	MonthlyPropertyInsurance float64 `json:"monthly_property_insurance" yaml:"monthly_property_insurance"`
}

// PresentedPeriod is one schedule row.
type PresentedPeriod struct {
	PeriodNumber      int     `json:"period_number" yaml:"period_number"`
	DueDate           string  `json:"due_date" yaml:"due_date"`
	Principal         float64 `json:"principal" yaml:"principal"`
	Interest          float64 `json:"interest" yaml:"interest"`
	LifeInsurance     float64 `json:"life_insurance" yaml:"life_insurance"`
	PropertyInsurance float64 `json:"property_insurance" yaml:"property_insurance"`
	TotalPayment      float64 `json:"total_payment" yaml:"total_payment"`
	RemainingBalance  float64 `json:"remaining_balance" yaml:"remaining_balance"`
}

// PresentedSummary totals the schedule.
type PresentedSummary struct {
	TotalPrincipal         float64 `json:"total_principal" yaml:"total_principal"`
	TotalInterest          float64 `json:"total_interest" yaml:"total_interest"`
	TotalLifeInsurance     float64 `json:"total_life_insurance" yaml:"total_life_insurance"`
	TotalPropertyInsurance float64 `json:"total_property_insurance" yaml:"total_property_insurance"`
	TotalPaid              float64 `json:"total_paid" yaml:"total_paid"`
	FirstDueDate           string  `json:"first_due_date" yaml:"first_due_date"`
	LastDueDate            string  `json:"last_due_date" yaml:"last_due_date"`
}

// Present converts a simulation result into its rounded presentation form.
func Present(result *simulation.Result) PresentedResult {
	terms := result.Terms
	params := result.Parameters
	summary := result.Summary

	presented := PresentedResult{
		Terms: PresentedTerms{
			PropertyValue:                  terms.PropertyValue,
			DownPayment:                    terms.DownPayment,
			AnnualRatePercent:              terms.AnnualRatePercent,
			PeriodCount:                    terms.PeriodCount,
			MonthlyLifeInsurancePercent:    terms.MonthlyLifeInsurancePercent,
			AnnualPropertyInsurancePercent: terms.AnnualPropertyInsurancePercent,
			DisbursementDate:               terms.DisbursementDate.Format(constants.DateLayout),
		},
		Parameters: PresentedParams{
			FinancedAmount:           cents(params.FinancedAmount),
			MonthlyRate:              params.MonthlyRate,
			BasePayment:              cents(params.BasePayment),
			MonthlyPropertyInsurance: cents(params.MonthlyPropertyInsurance),
		},
		Schedule: make([]PresentedPeriod, 0, len(result.Schedule)),
		Summary: PresentedSummary{
			TotalPrincipal:         cents(summary.TotalPrincipal),
			TotalInterest:          cents(summary.TotalInterest),
			TotalLifeInsurance:     cents(summary.TotalLifeInsurance),
			TotalPropertyInsurance: cents(summary.TotalPropertyInsurance),
			TotalPaid:              cents(summary.TotalPaid),
			FirstDueDate:           formatDate(summary, true),
			LastDueDate:            formatDate(summary, false),
		},
	}
	for _, record := range result.Schedule {
		presented.Schedule = append(presented.Schedule, PresentedPeriod{
			PeriodNumber:      record.PeriodNumber,
			DueDate:           record.DueDate.Format(constants.DateLayout),
			Principal:         cents(record.Principal),
			Interest:          cents(record.Interest),
			LifeInsurance:     cents(record.LifeInsurance),
			PropertyInsurance: cents(record.PropertyInsurance),
			TotalPayment:      cents(record.TotalPayment),
			RemainingBalance:  cents(record.RemainingBalance),
		})
	}
	return presented
}

func cents(v float64) float64 {
	return mathutil.Cents(v).InexactFloat64()
}

func formatDate(summary amortization.Summary, first bool) string {
	date := summary.LastDueDate
	if first {
		date = summary.FirstDueDate
	}
	if date.IsZero() {
		return ""
	}
	return date.Format(constants.DateLayout)
}
