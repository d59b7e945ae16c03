package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Assistant-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "assistant_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "assistant_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Serving endpoint counters
	ServingCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "assistant_api",
			Name:      "serving_calls_total",
			Help:      "Total model serving endpoint invocations",
		},
		[]string{"provider", "status"},
	)

	// Serving duration histogram
	ServingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "assistant_api",
			Name:      "serving_duration_seconds",
			Help:      "Model serving call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	// Recorded turns counter
	TurnsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "assistant_api",
			Name:      "turns_recorded_total",
			Help:      "Total conversation turns recorded",
		},
		[]string{"status"},
	)

	// Mirror write counters
	MirrorWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "assistant_api",
			Name:      "mirror_writes_total",
			Help:      "Total secondary-store mirror writes by outcome",
		},
		[]string{"kind", "status"},
	)

	// Mirror queue depth gauge
	MirrorQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jan",
			Subsystem: "assistant_api",
			Name:      "mirror_queue_depth",
			Help:      "Pending mirror reconciliation tasks",
		},
	)

	// Mirror task counter
	MirrorTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "assistant_api",
			Name:      "mirror_tasks_total",
			Help:      "Total mirror reconciliation tasks processed",
		},
		[]string{"kind", "status"},
	)

	// Speech and translation counters
	SpeechCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "assistant_api",
			Name:      "speech_calls_total",
			Help:      "Total speech and translation service invocations",
		},
		[]string{"operation", "status"},
	)

	// DB query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "assistant_api",
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"query_type"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordServingCall records a model serving invocation
func RecordServingCall(provider, status string, durationSec float64) {
	ServingCallsTotal.WithLabelValues(provider, status).Inc()
	ServingDuration.WithLabelValues(provider).Observe(durationSec)
}

// RecordTurnRecorded records a turn persistence outcome
func RecordTurnRecorded(status string) {
	TurnsRecordedTotal.WithLabelValues(status).Inc()
}

// RecordMirrorWrite records a secondary-store write outcome
func RecordMirrorWrite(kind, status string) {
	MirrorWritesTotal.WithLabelValues(kind, status).Inc()
}

// SetMirrorQueueDepth sets the current reconciliation queue depth
func SetMirrorQueueDepth(depth int64) {
	MirrorQueueDepth.Set(float64(depth))
}

// RecordMirrorTask records a reconciliation task outcome
func RecordMirrorTask(kind, status string) {
	MirrorTasksTotal.WithLabelValues(kind, status).Inc()
}

// RecordSpeechCall records a speech or translation service invocation
func RecordSpeechCall(operation, status string) {
	SpeechCallsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDBQuery records a database query
func RecordDBQuery(queryType string, durationSec float64) {
	DBQueryDuration.WithLabelValues(queryType).Observe(durationSec)
}
