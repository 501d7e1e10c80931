package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the compliance gate. All
// methods are safe on a nil receiver so services can run without metrics.
type Metrics struct {
	// Startup outcomes by outcome name
	StartupOutcomes *prometheus.CounterVec

	// Compliance API latency by endpoint and result ("ok" or error kind)
	RequestLatency *prometheus.HistogramVec

	// Offline fallbacks by stage: "policy" or "playable"
	OfflineFallbacks *prometheus.CounterVec

	// Poll ticks by result: "playable", "restricted", "error"
	PollTicks *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		StartupOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "playgate_startup_outcomes_total",
			Help: "Total startup checks by delivered outcome",
		}, []string{"outcome"}),

		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "playgate_request_duration_seconds",
			Help:    "Duration of compliance API calls by endpoint and result",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint", "result"}),

		OfflineFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "playgate_offline_fallbacks_total",
			Help: "Total times a cached or offline computation replaced a server answer",
		}, []string{"stage"}),

		PollTicks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "playgate_poll_ticks_total",
			Help: "Total playability polls by result",
		}, []string{"result"}),
	}
}

// IncrementStartupOutcome records an outcome delivered to the host.
func (m *Metrics) IncrementStartupOutcome(outcome string) {
	if m != nil {
		m.StartupOutcomes.WithLabelValues(outcome).Inc()
	}
}

// ObserveRequest records the duration of one API call.
func (m *Metrics) ObserveRequest(endpoint, result string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(endpoint, result).Observe(d.Seconds())
	}
}

// IncrementOfflineFallback records a fallback at stage.
func (m *Metrics) IncrementOfflineFallback(stage string) {
	if m != nil {
		m.OfflineFallbacks.WithLabelValues(stage).Inc()
	}
}

// IncrementPollTick records one poll.
func (m *Metrics) IncrementPollTick(result string) {
	if m != nil {
		m.PollTicks.WithLabelValues(result).Inc()
	}
}
