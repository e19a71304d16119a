package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felippelopes128-arch/lazy-backend/pkg/webhook"
)

// Metrics implements webhook.Metrics using Prometheus.
type Metrics struct {
	eventsTotal        *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	processingDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Prometheus metrics implementation for the webhook
// pipeline. Unextractable event names are recorded under the "none" label so
// counter cardinality stays bounded by the provider's event vocabulary.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Total number of webhook events received.",
		}, []string{"event", "outcome"}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "errors_total",
			Help:      "Total number of webhook processing errors.",
		}, []string{"error_type"}),

		processingDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "processing_duration_seconds",
			Help:      "Duration of webhook processing in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event"}),
	}
}

func (m *Metrics) RecordEvent(event, outcome string) {
	m.eventsTotal.WithLabelValues(eventLabel(event), outcome).Inc()
}

func (m *Metrics) RecordError(errorType string) {
	m.errorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) RecordProcessingDuration(event string, duration time.Duration) {
	m.processingDuration.WithLabelValues(eventLabel(event)).Observe(duration.Seconds())
}

func eventLabel(event string) string {
	if event == "" {
		return "none"
	}
	return event
}

// DefaultMetrics returns a Metrics implementation using the default
// Prometheus registerer.
func DefaultMetrics(namespace string) webhook.Metrics {
	return NewMetrics(prometheus.DefaultRegisterer, namespace)
}
