// Package http provides HTTP middleware that gates handlers on an active
// subscription, so sibling services can enforce entitlement with one line.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

// EmailExtractor extracts the customer email from an HTTP request
// Return empty string if no email is available
type EmailExtractor func(r *http.Request) string

// Config holds middleware configuration
type Config struct {
	// Store is the subscription store to query (required)
	Store subscription.Store

	// GetEmail extracts the customer email from the request (required)
	GetEmail EmailExtractor

	// OnDenied is called when the customer has no active subscription
	// If nil, returns 403 with a JSON error body
	OnDenied func(w http.ResponseWriter, r *http.Request)

	// OnMissingEmail is called when no email could be extracted
	// If nil, returns 401 Unauthorized
	OnMissingEmail func(w http.ResponseWriter, r *http.Request)

	// OnError is called when a store lookup fails
	// If nil, returns 500 Internal Server Error
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// RequireSubscriber creates middleware that only passes requests whose
// extracted email maps to an active subscription.
func RequireSubscriber(config Config) func(http.Handler) http.Handler {
	// Validate required configuration at startup (fail fast)
	if config.Store == nil {
		panic("lazy-backend/middleware/http: Config.Store is required")
	}
	if config.GetEmail == nil {
		panic("lazy-backend/middleware/http: Config.GetEmail is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := subscription.NormalizeEmail(config.GetEmail(r))
			if email == "" {
				if config.OnMissingEmail != nil {
					config.OnMissingEmail(w, r)
				} else {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
				}
				return
			}

			sub, err := config.Store.GetSubscription(r.Context(), email)
			if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
				if config.OnError != nil {
					config.OnError(w, r, err)
				} else {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
				return
			}

			if sub == nil || !sub.Active {
				if config.OnDenied != nil {
					config.OnDenied(w, r)
				} else {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusForbidden)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "subscription_inactive"})
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// FromHeader returns an EmailExtractor that reads the email from a header
func FromHeader(name string) EmailExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(name)
	}
}

// FromQuery returns an EmailExtractor that reads the email from a query parameter
func FromQuery(name string) EmailExtractor {
	return func(r *http.Request) string {
		return r.URL.Query().Get(name)
	}
}
