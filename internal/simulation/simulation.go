// Package simulation turns validated loan terms into a complete amortization
// result: derived parameters, the period schedule and its summary.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-schedule/internal/config"
	"github.com/iwvelando/mortgage-schedule/pkg/amortization"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "github.com/iwvelando/mortgage-schedule/internal/simulation"

// Result holds everything computed for one set of loan terms.
type Result struct {
	Terms      config.LoanTerms        `json:"terms"`
	Parameters amortization.Parameters `json:"parameters"`
	Schedule   amortization.Schedule   `json:"schedule"`
	Summary    amortization.Summary    `json:"summary"`
}

// Run simulates the loan with the default period limits.
func Run(ctx context.Context, logger *zap.Logger, terms config.LoanTerms) (*Result, error) {
	return RunWithLimits(ctx, logger, terms, config.DefaultSimulatorConfig())
}

// RunWithLimits validates terms against limits, derives the loan parameters
// and generates the schedule. Validation failures are returned unwrapped so
// callers can report the offending field.
func RunWithLimits(ctx context.Context, logger *zap.Logger, terms config.LoanTerms, limits config.SimulatorConfig) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	_, span := otel.Tracer(tracerName).Start(ctx, "simulation.Run")
	defer span.End()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := terms.Validate(limits); err != nil {
		logger.Debug("rejected loan terms",
			zap.String("op", "simulation.Run"),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid loan terms")
		return nil, err
	}

	start := time.Now()
	params := amortization.Derive(terms.ToAmortizationTerms())
	span.SetAttributes(
		attribute.Float64("loan.financed_amount", params.FinancedAmount),
		attribute.Float64("loan.monthly_rate", params.MonthlyRate),
		attribute.Int("loan.period_count", params.PeriodCount),
	)

	schedule, err := amortization.NewScheduleGenerator(logger).Generate(params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to simulate loan: %w", err)
	}

	summary := amortization.Summarize(params, schedule)
	span.SetAttributes(attribute.Float64("loan.total_paid", summary.TotalPaid))

	logger.Debug("simulation complete",
		zap.String("op", "simulation.Run"),
		zap.Int("periods", len(schedule)),
		zap.Float64("base_payment", params.BasePayment),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		Terms:      terms,
		Parameters: params,
		Schedule:   schedule,
		Summary:    summary,
	}, nil
}
