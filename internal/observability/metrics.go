package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	backendRequestsTotal  *prometheus.CounterVec
	backendLatencySeconds *prometheus.HistogramVec
	insightsStaleResults  prometheus.Counter
	insightsFetchesTotal  *prometheus.CounterVec
	uploadRejectedTotal   *prometheus.CounterVec
	attemptsDegradedTotal *prometheus.CounterVec
	unauthorizedTeardowns prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		backendRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total number of calls made to the Lernix backend.",
		}, []string{"operation", "status"})

		backendLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Latency distribution for calls made to the Lernix backend.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"operation"})

		insightsStaleResults = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "insights_stale_results_total",
			Help: "Aggregate fetches discarded because a newer course selection superseded them.",
		})

		insightsFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_fetches_total",
			Help: "Course insight fetches by outcome.",
		}, []string{"outcome"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Uploads rejected before reaching the backend.",
		}, []string{"reason"})

		attemptsDegradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_mcq_attempts_degraded_total",
			Help: "MCQ attempt fetches collapsed to an empty result.",
		}, []string{"reason"})

		unauthorizedTeardowns = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "session_unauthorized_teardowns_total",
			Help: "Sessions torn down after the backend rejected their token.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			backendRequestsTotal,
			backendLatencySeconds,
			insightsStaleResults,
			insightsFetchesTotal,
			uploadRejectedTotal,
			attemptsDegradedTotal,
			unauthorizedTeardowns,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for served requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// BackendRequests exposes the counter for outbound backend calls.
func BackendRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return backendRequestsTotal
}

// BackendLatency exposes the latency histogram for outbound backend calls.
func BackendLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return backendLatencySeconds
}

// InsightsStaleResults counts superseded aggregate fetches.
func InsightsStaleResults() prometheus.Counter {
	RegisterMetrics()
	return insightsStaleResults
}

// InsightsFetches counts aggregate fetches by outcome.
func InsightsFetches() *prometheus.CounterVec {
	RegisterMetrics()
	return insightsFetchesTotal
}

// UploadRejected counts locally rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// AttemptsDegraded counts MCQ attempt fetches that fell back to empty.
func AttemptsDegraded() *prometheus.CounterVec {
	RegisterMetrics()
	return attemptsDegradedTotal
}

// UnauthorizedTeardowns counts sessions cleared after a 401.
func UnauthorizedTeardowns() prometheus.Counter {
	RegisterMetrics()
	return unauthorizedTeardowns
}
