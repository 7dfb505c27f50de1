// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// TurnsTotal counts conversation turns by stage transition.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_turns_total",
			Help: "Conversation turns by stage transition",
		},
		[]string{"from_stage", "to_stage"},
	)

	// RecommendationsTotal counts recommendation runs by ranking pass.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_recommendations_total",
			Help: "Recommendation runs by pass (exact, scored, empty)",
		},
		[]string{"pass"},
	)

	// FieldsExtractedTotal counts requirement fields filled from utterances.
	FieldsExtractedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_fields_extracted_total",
			Help: "Requirement fields extracted from user utterances",
		},
		[]string{"field"},
	)

	// PhrasingDuration tracks generative phrasing calls.
	PhrasingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copilot_phrasing_duration_seconds",
			Help:    "Generative prompt phrasing duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10},
		},
		[]string{"provider", "status"},
	)

	// SessionsActive tracks live sessions in the session store.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "copilot_sessions_active",
			Help: "Number of sessions neither deleted nor expired",
		},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// TranscriptPublishFailures counts turns that could not be published to NATS.
	TranscriptPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copilot_transcript_publish_failures_total",
			Help: "Turns that failed to publish to the transcript stream",
		},
	)

	// NATSStreamMessages tracks messages in NATS stream.
	NATSStreamMessages = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nats_stream_messages",
			Help: "Number of messages in NATS stream",
		},
		[]string{"stream"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordTurn records a stage transition and the fields it extracted.
func RecordTurn(fromStage, toStage int, extracted []string) {
	TurnsTotal.WithLabelValues(strconv.Itoa(fromStage), strconv.Itoa(toStage)).Inc()
	for _, field := range extracted {
		FieldsExtractedTotal.WithLabelValues(field).Inc()
	}
}

// RecordRecommendation records which ranking pass produced recommendations.
func RecordRecommendation(pass string) {
	RecommendationsTotal.WithLabelValues(pass).Inc()
}

// RecordPhrasing records a generative phrasing call.
func RecordPhrasing(provider, status string, duration float64) {
	PhrasingDuration.WithLabelValues(provider, status).Observe(duration)
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
