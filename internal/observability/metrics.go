package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "translate_client_active_sessions",
		Help: "Number of active realtime sessions (0 or 1)",
	})

	sessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translate_client_sessions_total",
		Help: "Total session start attempts",
	}, []string{"result"})

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "translate_client_session_duration_seconds",
		Help:    "Duration of realtime sessions in seconds",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800},
	})

	eventsRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translate_client_events_routed_total",
		Help: "Inbound channel events by protocol type",
	}, []string{"type"})

	malformedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "translate_client_malformed_messages_total",
		Help: "Inbound channel messages dropped as unparseable",
	})

	commitsFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "translate_client_auto_commits_total",
		Help: "Auto-commit flush commands sent to the peer",
	})

	segmentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translate_client_segments_created_total",
		Help: "Text segments created, by panel",
	}, []string{"panel"})

	mintLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "translate_client_mint_latency_seconds",
		Help:    "Credential mint round-trip latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})

	signalingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "translate_client_signaling_latency_seconds",
		Help:    "SDP signaling round-trip latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})

	audioBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "translate_client_audio_bytes_total",
		Help: "Captured microphone audio bytes",
	})
)

// RecordSessionStart marks a session live.
func RecordSessionStart() {
	activeSessions.Inc()
	sessionsTotal.WithLabelValues("started").Inc()
}

// RecordSessionStartFailure counts an aborted start sequence.
func RecordSessionStartFailure() {
	sessionsTotal.WithLabelValues("failed").Inc()
}

// RecordSessionEnd marks a session finished and observes its duration.
func RecordSessionEnd(startedAt time.Time) {
	activeSessions.Dec()
	sessionDuration.Observe(time.Since(startedAt).Seconds())
}

// IncEventRouted counts one routed inbound event.
func IncEventRouted(eventType string) {
	if eventType == "" {
		eventType = "unknown"
	}
	eventsRouted.WithLabelValues(eventType).Inc()
}

// IncMalformedMessages counts one dropped unparseable message.
func IncMalformedMessages() {
	malformedMessages.Inc()
}

// IncSegmentsCreated counts one new text segment for the named panel.
func IncSegmentsCreated(panel string) {
	segmentsCreated.WithLabelValues(panel).Inc()
}

// IncCommitsFired counts one auto-commit flush.
func IncCommitsFired() {
	commitsFired.Inc()
}

// ObserveMintLatency records a credential mint round trip.
func ObserveMintLatency(d time.Duration) {
	mintLatency.Observe(d.Seconds())
}

// ObserveSignalingLatency records an SDP exchange round trip.
func ObserveSignalingLatency(d time.Duration) {
	signalingLatency.Observe(d.Seconds())
}

// AddAudioBytes counts captured microphone bytes.
func AddAudioBytes(n int) {
	audioBytes.Add(float64(n))
}
