package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
	"github.com/felippelopes128-arch/lazy-backend/storage/memory"
)

func newTestHandler(t *testing.T, store subscription.Store) *Handler {
	t.Helper()
	h, err := NewHandler(Config{Store: store})
	require.NoError(t, err)
	return h
}

func getStatus(h *Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	h.GetStatus(rec, req)
	return rec
}

func TestGetStatus_Found(t *testing.T) {
	store := memory.New()
	now := time.Now().UTC()
	require.NoError(t, store.UpsertSubscription(context.Background(), &subscription.Subscription{
		Email:     "user@test.com",
		Active:    true,
		UpdatedAt: now,
	}))

	h := newTestHandler(t, store)
	rec := getStatus(h, "/status?email=user@test.com")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.True(t, resp.Active)
	assert.Equal(t, "user@test.com", resp.Email)
	require.NotNil(t, resp.UpdatedAt)
	assert.True(t, resp.UpdatedAt.Equal(now))
}

func TestGetStatus_MixedCaseQueryResolvesSameRow(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.UpsertSubscription(context.Background(), &subscription.Subscription{
		Email:     "user@test.com",
		Active:    true,
		UpdatedAt: time.Now().UTC(),
	}))

	h := newTestHandler(t, store)
	rec := getStatus(h, "/status?email=USER@TEST.COM")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.True(t, resp.Active)
}

func TestGetStatus_NotFound(t *testing.T) {
	h := newTestHandler(t, memory.New())
	rec := getStatus(h, "/status?email=nobody@test.com")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
	assert.False(t, resp.Active)
	assert.Nil(t, resp.UpdatedAt)
}

func TestGetStatus_MissingEmail(t *testing.T) {
	h := newTestHandler(t, memory.New())
	rec := getStatus(h, "/status")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, memory.New())
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": true}`, rec.Body.String())
}

func TestRoot(t *testing.T) {
	h := newTestHandler(t, memory.New())
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()
	h.Root(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"LazyAndDark": "API ONLINE"}`, rec.Body.String())
}

func TestNewHandler_RequiresStore(t *testing.T) {
	_, err := NewHandler(Config{})
	assert.Error(t, err)
}
