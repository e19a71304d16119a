// Package api provides the HTTP read surface: entitlement status lookups and
// liveness endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

// Config defines the API handler configuration.
type Config struct {
	// Store is the subscription store to query (required).
	Store subscription.Store

	// Logger is an optional structured logger. Defaults to no-op.
	Logger subscription.Logger
}

// Handler serves the status and liveness endpoints.
type Handler struct {
	store  subscription.Store
	logger subscription.Logger
}

// NewHandler creates an API handler.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("api: Config.Store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = &subscription.NoopLogger{}
	}
	return &Handler{store: cfg.Store, logger: cfg.Logger}, nil
}

// GetStatus reports the current entitlement for the email given in the
// "email" query parameter. Lookup is by normalized email, so mixed-case
// queries resolve to the same row. A missing row is not an error: it reports
// found=false, active=false.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	email := subscription.NormalizeEmail(r.URL.Query().Get("email"))
	if email == "" {
		h.writeError(w, http.StatusBadRequest, "missing email parameter")
		return
	}

	sub, err := h.store.GetSubscription(r.Context(), email)
	if err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			h.writeJSON(w, StatusResponse{Email: email, Active: false, Found: false})
			return
		}
		h.logger.Error("status lookup failed",
			subscription.Field{Key: "email", Value: email},
			subscription.Field{Key: "error", Value: err.Error()},
		)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.writeJSON(w, StatusResponse{
		Email:     sub.Email,
		Active:    sub.Active,
		Found:     true,
		UpdatedAt: &sub.UpdatedAt,
	})
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]bool{"ok": true})
}

// Root serves the static liveness banner.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"LazyAndDark": "API ONLINE"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
