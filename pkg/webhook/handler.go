package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

// maxBodySize limits webhook payloads to prevent memory exhaustion.
// Kiwify payloads are well under 100KB, so 256KB is a safe upper bound.
const maxBodySize = 256 * 1024

// Config defines the reconciliation handler configuration.
type Config struct {
	// Store persists subscription state and the audit log (required).
	Store subscription.Store

	// Secret is the shared webhook secret. Empty disables authentication
	// (open mode) - an explicit, documented operational risk.
	Secret string

	// Logger is an optional structured logger. Defaults to no-op.
	Logger subscription.Logger

	// Metrics is an optional metrics collector. Defaults to no-op.
	Metrics Metrics

	// Now is the time source, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// Handler ingests provider webhooks: it authenticates the request, normalizes
// the payload, writes the audit record unconditionally, and upserts the
// derived subscription state for classified events.
//
// Every outcome short of infrastructure failure answers 200 with
// {"received": true} so the provider never sees a retry-triggering error for
// payloads it can legitimately send. Only authentication failures (401) and
// malformed bodies (400) are rejected, and store failures surface as 500 -
// never a silent success after a failed write.
type Handler struct {
	store      subscription.Store
	authorizer *Authorizer
	logger     subscription.Logger
	metrics    Metrics
	now        func() time.Time
}

// Response is the acknowledgement body returned for accepted webhooks.
type Response struct {
	Received bool   `json:"received"`
	Email    string `json:"email,omitempty"`
	Event    string `json:"event,omitempty"`
	Active   *bool  `json:"active,omitempty"`
	Note     string `json:"note,omitempty"`
}

// NewHandler creates a reconciliation handler.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("webhook: Config.Store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = &subscription.NoopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &NoopMetrics{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Handler{
		store:      cfg.Store,
		authorizer: NewAuthorizer(cfg.Secret, cfg.Logger),
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		now:        cfg.Now,
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := h.now()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 1. Authenticate. No audit row is written for rejected requests.
	if !h.authorizer.Authorize(r) {
		h.metrics.RecordError("auth_failed")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// 2. Parse the body. A body that is not valid JSON carries no structured
	// payload to store, so it is rejected without an audit row.
	body, err := readBody(w, r)
	if err != nil {
		h.metrics.RecordError("invalid_payload")
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		h.metrics.RecordError("invalid_payload")
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	// 3. Normalize event and email.
	event := NormalizeEvent(payload)
	email := ExtractEmail(payload)

	// 4. Audit unconditionally, even with no email or an unrecognized event,
	// so no inbound signal is ever silently lost.
	rec := &subscription.EventRecord{
		Event: event,
		Email: email,
		Raw:   json.RawMessage(body),
	}
	if err := h.store.AppendEvent(r.Context(), rec); err != nil {
		h.storeError(w, "audit write failed", event, err)
		return
	}

	if email == "" {
		h.logger.Info("webhook without customer email",
			subscription.Field{Key: "event", Value: event},
		)
		h.metrics.RecordEvent(event, "no_email")
		h.metrics.RecordProcessingDuration(event, h.now().Sub(startTime))
		h.respond(w, Response{Received: true, Event: event, Note: "no customer email in payload"})
		return
	}

	// 5. Classify and reconcile.
	switch action := Classify(event); action {
	case ActionIgnore:
		h.logger.Info("webhook event ignored",
			subscription.Field{Key: "event", Value: event},
			subscription.Field{Key: "email", Value: email},
		)
		h.metrics.RecordEvent(event, "ignored")
		h.metrics.RecordProcessingDuration(event, h.now().Sub(startTime))
		h.respond(w, Response{
			Received: true,
			Email:    email,
			Event:    event,
			Note:     fmt.Sprintf("unmapped event %q", event),
		})

	case ActionActivate, ActionDeactivate:
		active := action == ActionActivate
		sub := &subscription.Subscription{
			Email:     email,
			Active:    active,
			UpdatedAt: h.now().UTC(),
		}
		if err := h.store.UpsertSubscription(r.Context(), sub); err != nil {
			h.storeError(w, "subscription upsert failed", event, err)
			return
		}

		h.logger.Info("subscription reconciled",
			subscription.Field{Key: "email", Value: email},
			subscription.Field{Key: "event", Value: event},
			subscription.Field{Key: "active", Value: active},
		)
		outcome := "deactivated"
		if active {
			outcome = "activated"
		}
		h.metrics.RecordEvent(event, outcome)
		h.metrics.RecordProcessingDuration(event, h.now().Sub(startTime))
		h.respond(w, Response{
			Received: true,
			Email:    email,
			Event:    event,
			Active:   &active,
		})
	}
}

func (h *Handler) storeError(w http.ResponseWriter, msg, event string, err error) {
	h.logger.Error(msg,
		subscription.Field{Key: "event", Value: event},
		subscription.Field{Key: "error", Value: err.Error()},
	)
	h.metrics.RecordError("store_error")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) respond(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Response already committed, nothing left to do.
		return
	}
}

// readBody reads the request body under the size limit.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("payload too large (max %d bytes)", maxBodySize)
		}
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	return body, nil
}
