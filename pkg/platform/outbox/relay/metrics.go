package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the outbox relay.
type Metrics struct {
	Published       prometheus.Counter
	PublishFailures prometheus.Counter
	BatchDuration   prometheus.Histogram
}

// NewMetrics creates and registers the relay metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_outbox_published_total",
			Help: "Total number of outbox entries published to the broker",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_outbox_publish_failures_total",
			Help: "Total number of outbox batches that failed to publish",
		}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "registrar_outbox_batch_duration_seconds",
			Help:    "Time spent claiming, publishing and marking one outbox batch",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) addPublished(n int) {
	if m != nil {
		m.Published.Add(float64(n))
	}
}

func (m *Metrics) incPublishFailures() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}

func (m *Metrics) observeBatch(seconds float64) {
	if m != nil {
		m.BatchDuration.Observe(seconds)
	}
}
