// Package metrics defines the Prometheus collectors of the schedule service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered for one server.
type Metrics struct {
	// Requests counts HTTP requests by route and status code.
	Requests *prometheus.CounterVec

	// RequestDuration observes request latency by route.
	RequestDuration *prometheus.HistogramVec

	// Schedules counts generated schedules by source (computed or cache).
	Schedules *prometheus.CounterVec

	// ValidationErrors counts rejected loan terms by field.
	ValidationErrors *prometheus.CounterVec

	// SchedulePeriods observes the length of generated schedules.
	SchedulePeriods prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the collectors with a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the collectors with reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mortgage_http_requests_total",
				Help: "HTTP requests handled, by route and status code",
			},
			[]string{"route", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mortgage_http_request_duration_seconds",
				Help:    "HTTP request latency, by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Schedules: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mortgage_schedules_total",
				Help: "Schedules served, by source",
			},
			[]string{"source"},
		),
		ValidationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mortgage_validation_errors_total",
				Help: "Rejected loan terms, by field",
			},
			[]string{"field"},
		),
		SchedulePeriods: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mortgage_schedule_periods",
				Help:    "Number of periods in generated schedules",
				Buckets: []float64{12, 60, 120, 180, 240, 300, 360},
			},
		),
		gatherer: reg,
	}
}

// Handler exposes the registered collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
