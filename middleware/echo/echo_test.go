package echo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
	"github.com/felippelopes128-arch/lazy-backend/storage/memory"
)

func setupEcho(t *testing.T, store subscription.Store) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Use(RequireSubscriber(Config{
		Store:    store,
		GetEmail: FromHeader("X-Customer-Email"),
	}))
	e.GET("/api/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})
	return e
}

func setupStore(t *testing.T, email string, active bool) *memory.Store {
	t.Helper()
	store := memory.New()
	err := store.UpsertSubscription(context.Background(), &subscription.Subscription{
		Email:     email,
		Active:    active,
		UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return store
}

func TestRequireSubscriber_ActivePasses(t *testing.T) {
	e := setupEcho(t, setupStore(t, "user@test.com", true))

	req := httptest.NewRequest(http.MethodGet, "/api/test", http.NoBody)
	req.Header.Set("X-Customer-Email", "user@test.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", rec.Body.String())
}

func TestRequireSubscriber_InactiveDenied(t *testing.T) {
	e := setupEcho(t, setupStore(t, "user@test.com", false))

	req := httptest.NewRequest(http.MethodGet, "/api/test", http.NoBody)
	req.Header.Set("X-Customer-Email", "user@test.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error": "subscription_inactive"}`, rec.Body.String())
}

func TestRequireSubscriber_MissingEmail(t *testing.T) {
	e := setupEcho(t, memory.New())

	req := httptest.NewRequest(http.MethodGet, "/api/test", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
