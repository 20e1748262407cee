// Package metrics instruments the engine's query attempts with
// Prometheus counters and histograms.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder observes per-attempt and per-query outcomes. Implementations
// must be safe for concurrent use. The default Engine uses Noop; a
// *PrometheusRecorder is wired in by cmd/sntpquery.
type Recorder interface {
	// ObserveAttempt records one per-IP attempt outcome (e.g. "success",
	// "retry_later", "protocol_error", "time_allowed_exceeded").
	ObserveAttempt(outcome string)
	// ObserveOffsetSeconds records a successful query's computed clock
	// offset, in seconds (signed).
	ObserveOffsetSeconds(offset float64)
	// ObserveRoundTripSeconds records a successful query's computed
	// round-trip delay, in seconds.
	ObserveRoundTripSeconds(roundTrip float64)
}

type noopRecorder struct{}

// Noop is a Recorder that discards every observation.
var Noop Recorder = noopRecorder{}

func (noopRecorder) ObserveAttempt(string)          {}
func (noopRecorder) ObserveOffsetSeconds(float64)   {}
func (noopRecorder) ObserveRoundTripSeconds(float64) {}

// PrometheusRecorder is the default non-noop Recorder, registering its
// collectors against a caller-supplied registry so multiple Engines (or a
// CLI process with other subsystems) can share one /metrics endpoint.
type PrometheusRecorder struct {
	attempts  *prometheus.CounterVec
	offset    prometheus.Histogram
	roundTrip prometheus.Histogram
}

// NewPrometheusRecorder registers its collectors on registry and returns
// the Recorder. registry must not be nil.
func NewPrometheusRecorder(registry *prometheus.Registry) *PrometheusRecorder {
	r := &PrometheusRecorder{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sntp",
			Name:      "attempts_total",
			Help:      "Count of per-IP SNTP query attempts by outcome.",
		}, []string{"outcome"}),
		offset: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sntp",
			Name:      "clock_offset_seconds",
			Help:      "Computed clock offset of successful SNTP queries, in seconds.",
			Buckets:   prometheus.ExponentialBucketsRange(1e-6, 10, 20),
		}),
		roundTrip: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sntp",
			Name:      "round_trip_seconds",
			Help:      "Computed round-trip delay of successful SNTP queries, in seconds.",
			Buckets:   prometheus.ExponentialBucketsRange(1e-6, 10, 20),
		}),
	}
	registry.MustRegister(r.attempts, r.offset, r.roundTrip)
	return r
}

// ObserveAttempt increments the attempts_total counter for outcome.
func (r *PrometheusRecorder) ObserveAttempt(outcome string) {
	r.attempts.WithLabelValues(outcome).Inc()
}

// ObserveOffsetSeconds records offset in the clock_offset_seconds histogram.
func (r *PrometheusRecorder) ObserveOffsetSeconds(offset float64) {
	r.offset.Observe(offset)
}

// ObserveRoundTripSeconds records roundTrip in the round_trip_seconds histogram.
func (r *PrometheusRecorder) ObserveRoundTripSeconds(roundTrip float64) {
	r.roundTrip.Observe(roundTrip)
}
