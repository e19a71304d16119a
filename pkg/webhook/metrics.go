package webhook

import "time"

// Metrics defines the interface for tracking webhook processing.
// All methods are optional - the handler gracefully handles nil metrics.
type Metrics interface {
	// RecordEvent records a processed webhook event.
	// outcome: "activated", "deactivated", "ignored" or "no_email"
	RecordEvent(event, outcome string)

	// RecordError records a webhook processing failure.
	// errorType: "auth_failed", "invalid_payload" or "store_error"
	RecordError(errorType string)

	// RecordProcessingDuration records how long a webhook took to process.
	RecordProcessingDuration(event string, duration time.Duration)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordEvent(_, _ string)                            {}
func (n *NoopMetrics) RecordError(_ string)                               {}
func (n *NoopMetrics) RecordProcessingDuration(_ string, _ time.Duration) {}
