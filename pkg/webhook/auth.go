package webhook

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

// Authorizer validates inbound webhook requests against a shared secret.
// Kiwify installations deliver the secret in different transport locations
// depending on how the webhook was configured, so all known channels are
// accepted: a "signature" query parameter (which may repeat), an
// X-Webhook-Token header, or a Bearer Authorization header.
type Authorizer struct {
	secret string
	logger subscription.Logger
}

// NewAuthorizer creates an Authorizer. An empty secret (after trimming)
// enables open mode: every request is authorized. That is an explicit
// operational choice for local development, not a production default.
func NewAuthorizer(secret string, logger subscription.Logger) *Authorizer {
	if logger == nil {
		logger = &subscription.NoopLogger{}
	}
	return &Authorizer{
		secret: strings.TrimSpace(secret),
		logger: logger,
	}
}

// OpenMode reports whether authentication is disabled.
func (a *Authorizer) OpenMode() bool {
	return a.secret == ""
}

// Authorize reports whether the request carries the shared secret in any of
// the accepted channels. On rejection it logs which channels were present,
// never the submitted values or the configured secret.
func (a *Authorizer) Authorize(r *http.Request) bool {
	if a.secret == "" {
		return true
	}

	query := r.URL.Query()["signature"]
	for _, sig := range query {
		if a.match(sig) {
			return true
		}
	}

	token := r.Header.Get("X-Webhook-Token")
	if a.match(token) {
		return true
	}

	bearer, hasBearer := bearerToken(r.Header.Get("Authorization"))
	if hasBearer && a.match(bearer) {
		return true
	}

	a.logger.Warn("webhook token rejected",
		subscription.Field{Key: "query_signature", Value: len(query) > 0},
		subscription.Field{Key: "token_header", Value: token != ""},
		subscription.Field{Key: "bearer_header", Value: hasBearer},
	)
	return false
}

func (a *Authorizer) match(candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.secret)) == 1
}

// bearerToken extracts the token from an Authorization header with a
// case-insensitive Bearer scheme.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", false
	}
	return strings.TrimSpace(header[len("bearer "):]), true
}
