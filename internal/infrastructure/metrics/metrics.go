package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetscribe",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "meetscribe",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Auth requests
	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetscribe",
			Subsystem: "api",
			Name:      "auth_requests_total",
			Help:      "Total authentication requests",
		},
		[]string{"auth_type", "status"},
	)

	// Bot lifecycle
	BotsDispatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meetscribe",
			Subsystem: "api",
			Name:      "bots_dispatched_total",
			Help:      "Total recording bots scheduled",
		},
	)

	TranscriptPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetscribe",
			Subsystem: "api",
			Name:      "transcript_polls_total",
			Help:      "Transcript poll runs by outcome",
		},
		[]string{"outcome"},
	)

	MeetingsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meetscribe",
			Subsystem: "api",
			Name:      "meetings_completed_total",
			Help:      "Total meetings that reached completed",
		},
	)

	// Content generation
	ContentGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetscribe",
			Subsystem: "api",
			Name:      "content_generated_total",
			Help:      "Generated artifacts by type",
		},
		[]string{"type"},
	)

	// LLM inference duration
	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "meetscribe",
			Subsystem: "api",
			Name:      "llm_duration_seconds",
			Help:      "LLM inference duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model"},
	)

	// External provider errors
	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetscribe",
			Subsystem: "api",
			Name:      "provider_errors_total",
			Help:      "Total external provider call failures",
		},
		[]string{"provider", "error_type"},
	)

	// Social publishing
	PublishRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetscribe",
			Subsystem: "api",
			Name:      "publish_requests_total",
			Help:      "Social publish attempts by platform and outcome",
		},
		[]string{"platform", "status"},
	)

	// Calendar sync duration
	CalendarSyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "meetscribe",
			Subsystem: "api",
			Name:      "calendar_sync_duration_seconds",
			Help:      "Calendar sync duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"status"},
	)
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records an HTTP request with all relevant labels
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordAuthRequest records an authentication attempt
func RecordAuthRequest(authType, status string) {
	AuthRequestsTotal.WithLabelValues(authType, status).Inc()
}

// RecordLLMDuration records the duration of an LLM inference call
func RecordLLMDuration(model string, durationSec float64) {
	LLMDuration.WithLabelValues(model).Observe(durationSec)
}

// RecordProviderError records an external provider error
func RecordProviderError(provider, errorType string) {
	ProviderErrorsTotal.WithLabelValues(provider, errorType).Inc()
}

// RecordContentGenerated records one generated artifact
func RecordContentGenerated(contentType string) {
	ContentGeneratedTotal.WithLabelValues(contentType).Inc()
}

// RecordPublish records a social publish attempt
func RecordPublish(platform, status string) {
	if status == "" {
		status = "unknown"
	}
	PublishRequestsTotal.WithLabelValues(platform, status).Inc()
}

// RecordCalendarSync records a calendar sync run
func RecordCalendarSync(status string, durationSec float64) {
	CalendarSyncDuration.WithLabelValues(status).Observe(durationSec)
}
