// Package subscription defines the domain model for customer entitlements:
// the current subscription state per email and the append-only audit log of
// raw webhook payloads that produced (or failed to produce) that state.
package subscription

import (
	"encoding/json"
	"strings"
	"time"
)

// Subscription is the current derived state for one customer email.
// There is at most one Subscription per normalized email; it is overwritten
// in place on every classified webhook event and never deleted.
type Subscription struct {
	// Email is the normalized (trimmed, lower-cased) customer email.
	Email string `json:"email"`

	// Active reports whether the customer currently holds an active subscription.
	Active bool `json:"active"`

	// UpdatedAt is the time of the most recent accepted transition.
	UpdatedAt time.Time `json:"updated_at"`
}

// EventRecord is an immutable audit record of a received webhook payload.
// One record is written per authenticated request with a well-formed JSON
// body, regardless of whether the payload changed any subscription.
type EventRecord struct {
	// ID is the storage-assigned synthetic identifier (0 before insert).
	ID int64 `json:"id"`

	// ReceivedAt is set by the store at insert time.
	ReceivedAt time.Time `json:"received_at"`

	// Event is the normalized event name, empty when none could be extracted.
	Event string `json:"event,omitempty"`

	// Email is the normalized customer email, empty when none could be extracted.
	Email string `json:"email,omitempty"`

	// Raw is the full original payload, structurally preserved.
	Raw json.RawMessage `json:"raw"`
}

// NormalizeEmail returns the canonical form of an email address used as the
// join key throughout the system: surrounding whitespace trimmed and the
// result lower-cased. No syntactic validation is performed here.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
