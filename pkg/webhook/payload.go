// Package webhook implements the Kiwify webhook ingestion pipeline: shared
// secret authentication, tolerant payload normalization, event classification
// and idempotent reconciliation of subscription state.
package webhook

import (
	"strings"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

// eventFields are the payload keys probed for the event name, in precedence
// order. Kiwify has renamed this field across webhook versions; "order_status"
// is a last-resort fallback for order-shaped payloads that carry no event
// field at all.
var eventFields = []string{
	"event",
	"type",
	"webhook_event_type",
	"trigger",
	"order_status",
}

// emailPaths are the JSON paths probed for the customer email, in precedence
// order. The upstream payload shape is inconsistent across provider versions,
// so the first path that resolves to a string containing "@" wins.
var emailPaths = [][]string{
	{"customer", "email"},
	{"Customer", "email"},
	{"buyer", "email"},
	{"order", "customer", "email"},
	{"order", "customer_email"},
	{"customer_email"},
	{"customerEmail"},
	{"email"},
}

// NormalizeEvent extracts the canonical event name from a decoded payload:
// the first present, non-empty value among the known event fields, trimmed,
// lower-cased and with spaces replaced by underscores. Returns "" when no
// field matches or the payload root is not an object.
func NormalizeEvent(payload any) string {
	root, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	for _, field := range eventFields {
		s, ok := root[field].(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		return strings.ReplaceAll(strings.ToLower(s), " ", "_")
	}
	return ""
}

// ExtractEmail extracts the customer email from a decoded payload by probing
// the known paths in order. A path matches only if every intermediate node is
// an object and the leaf is a string containing "@"; anything else is a
// non-match and probing continues. The result is trimmed and lower-cased.
// No further syntax validation is done: a malformed address containing "@"
// is accepted as-is.
func ExtractEmail(payload any) string {
	for _, path := range emailPaths {
		if email, ok := probeString(payload, path); ok {
			return subscription.NormalizeEmail(email)
		}
	}
	return ""
}

// probeString walks one path through the payload tree.
func probeString(node any, path []string) (string, bool) {
	for _, key := range path {
		obj, ok := node.(map[string]any)
		if !ok {
			return "", false
		}
		node, ok = obj[key]
		if !ok {
			return "", false
		}
	}
	s, ok := node.(string)
	if !ok || !strings.Contains(s, "@") {
		return "", false
	}
	return s, true
}
