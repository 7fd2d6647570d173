package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ScansRunning is the number of search scans currently running (in-memory).
	ScansRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "search_scans_running",
			Help: "Number of search scans currently running",
		},
	)

	// ScansTotal counts scan completions by status (completed, fetch_error, error).
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_scans_total",
			Help: "Total number of search scans finished by status",
		},
		[]string{"status"},
	)

	// NotificationsTotal counts webhook notifications by outcome (sent, failed).
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of webhook notifications by outcome",
		},
		[]string{"outcome"},
	)

	// ListingsRecordedTotal counts listings written to the results table.
	ListingsRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "listings_recorded_total",
			Help: "Total number of listings recorded as seen",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, ScansRunning, ScansTotal, NotificationsTotal, ListingsRecordedTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /api/searches/123 -> /api/searches/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncScansRunning increments the running scans gauge (call when a scan starts).
func IncScansRunning() {
	ScansRunning.Inc()
}

// DecScansRunning decrements the running scans gauge (call when a scan finishes).
func DecScansRunning() {
	ScansRunning.Dec()
}

// IncScansTotal increments the scan counter for the given status (completed, fetch_error, error).
func IncScansTotal(status string) {
	ScansTotal.WithLabelValues(status).Inc()
}

// IncNotifications increments the notification counter for the given outcome (sent, failed).
func IncNotifications(outcome string) {
	NotificationsTotal.WithLabelValues(outcome).Inc()
}

// IncListingsRecorded increments the recorded-listings counter.
func IncListingsRecorded() {
	ListingsRecordedTotal.Inc()
}
