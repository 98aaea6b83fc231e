// Package metrics provides Prometheus metrics for the sfsync service.
package metrics

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/starsandeep/sfsync/pkg/models"
)

var (
	// MetadataFetchesTotal counts metadata API calls by kind and outcome
	MetadataFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sfsync",
			Subsystem: "metadata",
			Name:      "fetches_total",
			Help:      "Total number of metadata API fetches by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	MetadataFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sfsync",
			Subsystem: "metadata",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of metadata API fetches in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"kind"},
	)

	// LoadsTotal counts wizard loads by fetch status (ok, fallback_cached, fallback_empty)
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sfsync",
			Subsystem: "wizard",
			Name:      "loads_total",
			Help:      "Total number of mapping loads by fetch status",
		},
		[]string{"fetch_status"},
	)

	// StaleLoadsTotal counts load results discarded because the selection changed
	StaleLoadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sfsync",
			Subsystem: "wizard",
			Name:      "stale_loads_total",
			Help:      "Total number of load results discarded as stale",
		},
	)

	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sfsync",
			Subsystem: "mapping",
			Name:      "evaluations_total",
			Help:      "Total number of mapping evaluations by gate outcome",
		},
		[]string{"can_proceed"},
	)

	GateFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sfsync",
			Subsystem: "mapping",
			Name:      "gate_failures_total",
			Help:      "Total number of gate failures by reason",
		},
		[]string{"reason"},
	)

	MismatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sfsync",
			Subsystem: "mapping",
			Name:      "mismatches_total",
			Help:      "Total number of detected mismatches by kind and severity",
		},
		[]string{"kind", "severity"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sfsync",
			Subsystem: "wizard",
			Name:      "sessions_active",
			Help:      "Number of live wizard sessions",
		},
	)

	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sfsync",
			Subsystem: "wizard",
			Name:      "completions_total",
			Help:      "Total number of mapping step completion attempts by status",
		},
		[]string{"status"},
	)

	KafkaPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sfsync",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of Kafka messages published",
		},
		[]string{"topic", "status"},
	)

	KafkaPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sfsync",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"topic"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sfsync",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sfsync",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
		},
		[]string{"method", "route"},
	)
)

func RecordMetadataFetch(kind, outcome string, durationSeconds float64) {
	MetadataFetchesTotal.WithLabelValues(kind, outcome).Inc()
	MetadataFetchDuration.WithLabelValues(kind).Observe(durationSeconds)
}

func RecordLoad(fetchStatus string) {
	LoadsTotal.WithLabelValues(fetchStatus).Inc()
}

func RecordStaleLoad() {
	StaleLoadsTotal.Inc()
}

// RecordEvaluation records the gate outcome, each failing reason and each mismatch.
func RecordEvaluation(eval models.Evaluation) {
	EvaluationsTotal.WithLabelValues(strconv.FormatBool(eval.CanProceed)).Inc()
	for _, failure := range eval.GateFailures {
		GateFailuresTotal.WithLabelValues(string(failure.Reason)).Inc()
	}
	for _, issue := range eval.Issues {
		MismatchesTotal.WithLabelValues(string(issue.Kind), string(issue.Severity)).Inc()
	}
}

func RecordCompletion(status string) {
	CompletionsTotal.WithLabelValues(status).Inc()
}

func RecordKafkaPublish(topic, status string, durationSeconds float64) {
	KafkaPublishTotal.WithLabelValues(topic, status).Inc()
	KafkaPublishDuration.WithLabelValues(topic).Observe(durationSeconds)
}

func RecordHTTPRequest(method, route string, statusCode int, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RegisterRoutes exposes the default registry at /metrics.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
