package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC Metrics
	solanaRPCCallsTotal        *prometheus.CounterVec
	solanaRPCCallDuration      *prometheus.HistogramVec
	solanaRPCSignaturesPerCall *prometheus.HistogramVec

	// Activity Assembly Metrics
	activitiesAssembledTotal *prometheus.CounterVec
	activityRecordsDegraded  *prometheus.CounterVec
	activityDeltasTotal      *prometheus.CounterVec
	activityAssemblyDuration prometheus.Histogram

	// HTTP Metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		solanaRPCSignaturesPerCall: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_signatures_per_call",
				Help:    "Number of signatures fetched per GetSignaturesForAddress call",
				Buckets: []float64{1, 5, 10, 25, 50, 100},
			},
			[]string{"endpoint"},
		),

		activitiesAssembledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activities_assembled_total",
				Help: "Total number of activity records assembled",
			},
			[]string{"status"},
		),
		activityRecordsDegraded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activity_records_degraded_total",
				Help: "Total number of activity records emitted without transaction detail",
			},
			[]string{"reason"},
		),
		activityDeltasTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activity_deltas_total",
				Help: "Total number of balance delta computations by resolution",
			},
			[]string{"resolution"},
		),
		activityAssemblyDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "activity_assembly_duration_seconds",
				Help:    "End-to-end duration of per-address activity assembly",
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"handler", "method"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by handler, method and status code",
			},
			[]string{"handler", "method", "status"},
		),
	}
}

// RecordRPCCall records a Solana RPC call with its method, status, endpoint and duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordRPCSignaturesPerCall records how many signatures a listing call returned.
func (m *Metrics) RecordRPCSignaturesPerCall(endpoint string, count float64) {
	m.solanaRPCSignaturesPerCall.WithLabelValues(endpoint).Observe(count)
}

// RecordActivityAssembled records one assembled activity record.
// Status is "success" or "failed" (the record's on-chain status).
func (m *Metrics) RecordActivityAssembled(status string) {
	m.activitiesAssembledTotal.WithLabelValues(status).Inc()
}

// RecordDegradedRecord records an activity record emitted without transaction
// detail. Reason identifies the failure class (e.g. "not_found", "unavailable").
func (m *Metrics) RecordDegradedRecord(reason string) {
	m.activityRecordsDegraded.WithLabelValues(reason).Inc()
}

// RecordDeltaResolution records the outcome of one balance delta computation.
// Resolution is "known" or "unknown".
func (m *Metrics) RecordDeltaResolution(resolution string) {
	m.activityDeltasTotal.WithLabelValues(resolution).Inc()
}

// RecordAssemblyDuration records the end-to-end duration of one activity assembly.
func (m *Metrics) RecordAssemblyDuration(duration float64) {
	m.activityAssemblyDuration.Observe(duration)
}

// RecordHTTPRequest records an HTTP request with its handler, method, status code and duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	status := statusClass(statusCode)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(handler, method).Observe(duration)
}

// statusClass buckets a status code into its class ("2xx", "4xx", ...).
func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
