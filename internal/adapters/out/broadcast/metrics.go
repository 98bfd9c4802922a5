package broadcast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what happens to events per sink.
type Metrics struct {
	Enqueued  *prometheus.CounterVec
	Dropped   *prometheus.CounterVec
	Failed    *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewMetrics registers the broadcast collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Enqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitchenpos",
			Subsystem: "broadcast",
			Name:      "events_enqueued_total",
			Help:      "Events accepted into a sink queue.",
		}, []string{"sink", "event"}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitchenpos",
			Subsystem: "broadcast",
			Name:      "events_dropped_total",
			Help:      "Events dropped because a sink queue was full or closed.",
		}, []string{"sink", "event"}),
		Failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kitchenpos",
			Subsystem: "broadcast",
			Name:      "delivery_failures_total",
			Help:      "Events a sink failed to deliver.",
		}, []string{"sink", "event"}),
		LatencyMS: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kitchenpos",
			Subsystem: "broadcast",
			Name:      "delivery_duration_ms",
			Help:      "Sink delivery latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"sink"}),
	}
}
