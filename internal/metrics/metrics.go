package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the console's Prometheus collectors.
type Metrics struct {
	// Backend (PHP API) calls
	BackendCalls    *prometheus.CounterVec   // by resource, operation, outcome (success or an error kind)
	BackendDuration *prometheus.HistogramVec // by resource, operation

	// HTTP surface
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Mutations
	InflightRejections *prometheus.CounterVec // duplicate submissions refused, by resource
	Mutations          *prometheus.CounterVec // by resource, action, outcome
	PermissionDenials  *prometheus.CounterVec // by resource, action

	// Fiscal AI questions by detected category
	Questions *prometheus.CounterVec

	AuditPurged prometheus.Counter
}

// NewMetrics registers every collector on reg (the default registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		BackendCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payfisc_backend_calls_total",
				Help: "Backend API calls by resource, operation and outcome",
			},
			[]string{"resource", "operation", "outcome"},
		),
		BackendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payfisc_backend_call_duration_seconds",
				Help:    "Backend API call latency in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
			},
			[]string{"resource", "operation"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		InflightRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payfisc_inflight_rejections_total",
				Help: "Mutations refused because one was already running for the same record",
			},
			[]string{"resource"},
		),
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payfisc_mutations_total",
				Help: "Mutations submitted from the console by resource, action and outcome",
			},
			[]string{"resource", "action", "outcome"},
		),
		PermissionDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payfisc_permission_denials_total",
				Help: "Permission check failures by resource and action",
			},
			[]string{"resource", "action"},
		),
		Questions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payfisc_ai_questions_total",
				Help: "Fiscal AI questions by detected category",
			},
			[]string{"category"},
		),
		AuditPurged: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "payfisc_audit_purged_total",
				Help: "Audit journal rows removed by the retention job",
			},
		),
	}
}
