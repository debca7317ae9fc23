// Package server exposes schedule simulation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/iwvelando/mortgage-schedule/internal/cache"
	"github.com/iwvelando/mortgage-schedule/internal/config"
	"github.com/iwvelando/mortgage-schedule/internal/metrics"
	"github.com/iwvelando/mortgage-schedule/internal/simulation"
	"github.com/iwvelando/mortgage-schedule/pkg/constants"
	"github.com/iwvelando/mortgage-schedule/pkg/output"
	"github.com/iwvelando/mortgage-schedule/pkg/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RequestIDHeader carries the identifier assigned to each request.
const RequestIDHeader = "X-Request-ID"

const tracerName = "github.com/iwvelando/mortgage-schedule/internal/server"

// Options configures the handler. Zero values select defaults: no cache,
// a private metrics registry and the default period limits.
type Options struct {
	MaxBodySize int64
	Version     string
	Limits      config.SimulatorConfig
	Cache       cache.Cache
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	limits      config.SimulatorConfig
	cache       cache.Cache
	metrics     *metrics.Metrics
	now         func() time.Time
}

type contextKey struct{}

// NewHandler constructs the HTTP handler that serves the schedule API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := &handler{
		logger:      logger,
		maxBodySize: opts.MaxBodySize,
		version:     trimmedVersion,
		limits:      opts.Limits.Normalize(),
		cache:       opts.Cache,
		metrics:     opts.Metrics,
		now:         opts.Now,
	}

	r := mux.NewRouter()
	r.Use(h.withRequestID, h.instrument)

	r.HandleFunc("/api/schedule", h.handleSchedule).Methods(http.MethodPost)
	r.HandleFunc("/api/version", h.handleVersion).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)

	return r
}

// withRequestID assigns every request an identifier, keeping a valid one
// supplied by the client.
func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), contextKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the identifier assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		ctx, span := otel.Tracer(tracerName).Start(r.Context(), r.Method+" "+route)
		defer span.End()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		elapsed := time.Since(start)

		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", rec.status),
			attribute.String("request.id", RequestID(ctx)),
		)
		h.metrics.Requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		h.metrics.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		h.logger.Debug("request handled",
			zap.String("op", "server.instrument"),
			zap.String("request_id", RequestID(ctx)),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
		)
	})
}

type scheduleResponse struct {
	*simulation.Result
	Cached    bool   `json:"cached"`
	Duration  string `json:"duration"`
	RequestID string `json:"requestId"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Rule  string `json:"rule,omitempty"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	start := time.Now()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = constants.OutputFormatJSON
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var loan config.LoanConfig
	if err := decoder.Decode(&loan); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode loan terms: %v", err), op)
		return
	}

	terms, err := loan.ToLoanTerms(h.now())
	if err != nil {
		h.respondValidationError(w, r, err, op)
		return
	}

	result, cached, err := h.simulate(r.Context(), terms)
	if err != nil {
		if _, ok := validation.AsValidationError(err); ok {
			h.respondValidationError(w, r, err, op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to compute schedule: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("schedule computed",
		zap.String("op", op),
		zap.String("request_id", RequestID(r.Context())),
		zap.Int("periods", len(result.Schedule)),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	)

	if format != constants.OutputFormatJSON {
		h.writeRendered(w, r, format, result)
		return
	}

	h.writeJSON(w, http.StatusOK, scheduleResponse{
		Result:    result,
		Cached:    cached,
		Duration:  elapsed.String(),
		RequestID: RequestID(r.Context()),
	})
}

// simulate serves terms from the cache when possible and stores fresh results.
func (h *handler) simulate(ctx context.Context, terms config.LoanTerms) (*simulation.Result, bool, error) {
	var key string
	if h.cache != nil {
		key = cache.Key(terms, h.limits)
		if encoded, ok := h.cache.Get(ctx, key); ok {
			var result simulation.Result
			if err := json.Unmarshal([]byte(encoded), &result); err == nil {
				h.metrics.Schedules.WithLabelValues("cache").Inc()
				return &result, true, nil
			}
			h.logger.Warn("discarding undecodable cache entry",
				zap.String("op", "server.simulate"),
				zap.String("key", key),
			)
		}
	}

	result, err := simulation.RunWithLimits(ctx, h.logger, terms, h.limits)
	if err != nil {
		return nil, false, err
	}
	h.metrics.Schedules.WithLabelValues("computed").Inc()
	h.metrics.SchedulePeriods.Observe(float64(len(result.Schedule)))

	if h.cache != nil {
		encoded, err := json.Marshal(result)
		if err == nil {
			err = h.cache.Set(ctx, key, string(encoded))
		}
		if err != nil {
			h.logger.Warn("failed to cache schedule",
				zap.String("op", "server.simulate"),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return result, false, nil
}

func (h *handler) writeRendered(w http.ResponseWriter, r *http.Request, format string, result *simulation.Result) {
	contentType := "text/plain; charset=utf-8"
	switch format {
	case constants.OutputFormatCSV:
		contentType = "text/csv; charset=utf-8"
	case constants.OutputFormatYAML:
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if err := output.Write(w, format, result); err != nil {
		h.logger.Warn("failed to write response",
			zap.String("op", "server.writeRendered"),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
	}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *handler) respondValidationError(w http.ResponseWriter, r *http.Request, err error, op string) {
	verr, ok := validation.AsValidationError(err)
	if !ok {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.metrics.ValidationErrors.WithLabelValues(verr.Field).Inc()
	h.logger.Info("rejected loan terms",
		zap.String("op", op),
		zap.String("request_id", RequestID(r.Context())),
		zap.String("field", verr.Field),
		zap.String("rule", verr.Rule),
	)
	h.writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: verr.Error(),
		Field: verr.Field,
		Rule:  verr.Rule,
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, message, op string) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.String("request_id", RequestID(r.Context())),
			zap.Int("status", status),
			zap.String("error", message),
		)
	} else {
		h.logger.Info("request rejected",
			zap.String("op", op),
			zap.String("request_id", RequestID(r.Context())),
			zap.Int("status", status),
			zap.String("error", message),
		)
	}
	h.writeJSON(w, status, errorResponse{Error: message})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
