// Package prometheus implements metrics.Collector for Prometheus.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports pipeline metrics to a Prometheus registry.
type Collector struct {
	messages       *prometheus.CounterVec
	extractions    *prometheus.CounterVec
	composeRetries prometheus.Counter
	storeOps       *prometheus.CounterVec
	storeLatency   *prometheus.HistogramVec
}

// New creates a Prometheus collector under the given namespace.
func New(namespace string) *Collector {
	return &Collector{
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Total handled messages by path",
			},
			[]string{"path"},
		),
		extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extractions_total",
				Help:      "Total extraction calls by outcome",
			},
			[]string{"outcome"},
		),
		composeRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compose_retries_total",
				Help:      "Total retries of the compose path",
			},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_ops_total",
				Help:      "Total ledger store operations by op and status",
			},
			[]string{"op", "status"},
		),
		storeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_op_duration_seconds",
				Help:      "Ledger store operation latency",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"op"},
		),
	}
}

// Register registers all metrics with the given registry.
func (c *Collector) Register(registry *prometheus.Registry) error {
	collectors := []prometheus.Collector{
		c.messages,
		c.extractions,
		c.composeRetries,
		c.storeOps,
		c.storeLatency,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RecordMessage counts one handled message by path.
func (c *Collector) RecordMessage(path string) {
	c.messages.WithLabelValues(path).Inc()
}

// RecordExtraction counts one extraction call by outcome.
func (c *Collector) RecordExtraction(outcome string) {
	c.extractions.WithLabelValues(outcome).Inc()
}

// RecordComposeRetry counts one retry of the compose path.
func (c *Collector) RecordComposeRetry() {
	c.composeRetries.Inc()
}

// RecordStoreOp records a ledger operation with its latency.
func (c *Collector) RecordStoreOp(op string, success bool, duration time.Duration) {
	status := "ok"
	if !success {
		status = "error"
	}
	c.storeOps.WithLabelValues(op, status).Inc()
	c.storeLatency.WithLabelValues(op).Observe(duration.Seconds())
}
