package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Client metrics
	ClientRequests *prometheus.CounterVec
	ClientDuration *prometheus.HistogramVec
	ClientInFlight *prometheus.GaugeVec
	BreakerState   *prometheus.GaugeVec
	PoolInFlight   *prometheus.GaugeVec

	// Admin server metrics
	AdminRequests *prometheus.CounterVec
	AdminDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. A nil reg yields unregistered
// collectors, which is what most unit tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ClientRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "httpbinder_client_requests_total",
				Help: "Total number of outbound requests per bound client",
			},
			[]string{"client", "method", "status"},
		),
		ClientDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "httpbinder_client_request_duration_seconds",
				Help:    "Outbound request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"client", "method"},
		),
		ClientInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "httpbinder_client_in_flight",
				Help: "Outbound requests currently in flight per bound client",
			},
			[]string{"client"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "httpbinder_client_breaker_state",
				Help: "Circuit breaker state per client (0=closed, 1=half-open, 2=open)",
			},
			[]string{"client"},
		),
		PoolInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "httpbinder_io_pool_in_flight",
				Help: "I/O slots currently held per pool",
			},
			[]string{"pool"},
		),
		AdminRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "httpbinder_admin_requests_total",
				Help: "Total number of admin server requests",
			},
			[]string{"method", "path", "status"},
		),
		AdminDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "httpbinder_admin_request_duration_seconds",
				Help:    "Admin server request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// RecordClientRequest records one completed outbound request. Transport
// errors are recorded with status "error".
func (m *Metrics) RecordClientRequest(client, method, status string, duration time.Duration) {
	m.ClientRequests.WithLabelValues(client, method, status).Inc()
	m.ClientDuration.WithLabelValues(client, method).Observe(duration.Seconds())
}

// SetBreakerState publishes the numeric breaker state.
func (m *Metrics) SetBreakerState(client string, state int) {
	m.BreakerState.WithLabelValues(client).Set(float64(state))
}

// RecordAdminRequest records one admin server request.
func (m *Metrics) RecordAdminRequest(method, path, status string, duration time.Duration) {
	m.AdminRequests.WithLabelValues(method, path, status).Inc()
	m.AdminDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
