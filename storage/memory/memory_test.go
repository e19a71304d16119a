package memory

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

func TestUpsertAndGet(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.GetSubscription(ctx, "user@test.com")
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)

	now := time.Now().UTC()
	sub := &subscription.Subscription{Email: "user@test.com", Active: true, UpdatedAt: now}
	require.NoError(t, store.UpsertSubscription(ctx, sub))

	got, err := store.GetSubscription(ctx, "user@test.com")
	require.NoError(t, err)
	assert.Equal(t, "user@test.com", got.Email)
	assert.True(t, got.Active)
	assert.True(t, got.UpdatedAt.Equal(now))

	// Upsert overwrites in place.
	later := now.Add(time.Minute)
	require.NoError(t, store.UpsertSubscription(ctx, &subscription.Subscription{
		Email: "user@test.com", Active: false, UpdatedAt: later,
	}))
	got, err = store.GetSubscription(ctx, "user@test.com")
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.True(t, got.UpdatedAt.Equal(later))
}

func TestUpsertRejectsInvalid(t *testing.T) {
	store := New()
	ctx := context.Background()

	assert.ErrorIs(t, store.UpsertSubscription(ctx, nil), subscription.ErrInvalidRecord)
	assert.ErrorIs(t, store.UpsertSubscription(ctx, &subscription.Subscription{}), subscription.ErrInvalidRecord)
}

func TestGetReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.UpsertSubscription(ctx, &subscription.Subscription{
		Email: "user@test.com", Active: true, UpdatedAt: time.Now().UTC(),
	}))

	got, err := store.GetSubscription(ctx, "user@test.com")
	require.NoError(t, err)
	got.Active = false

	again, err := store.GetSubscription(ctx, "user@test.com")
	require.NoError(t, err)
	assert.True(t, again.Active, "mutating a returned value must not affect the store")
}

func TestAppendEvent(t *testing.T) {
	store := New()
	ctx := context.Background()

	rec := &subscription.EventRecord{
		Event: "compra_aprovada",
		Email: "user@test.com",
		Raw:   json.RawMessage(`{"event": "compra_aprovada"}`),
	}
	require.NoError(t, store.AppendEvent(ctx, rec))
	assert.Equal(t, int64(1), rec.ID)
	assert.False(t, rec.ReceivedAt.IsZero())

	require.NoError(t, store.AppendEvent(ctx, &subscription.EventRecord{
		Raw: json.RawMessage(`{}`),
	}))

	events := store.Events()
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].ID)
	assert.Equal(t, int64(2), events[1].ID)
	assert.Empty(t, events[1].Event)
}

func TestAppendEventRejectsInvalid(t *testing.T) {
	store := New()
	ctx := context.Background()

	assert.ErrorIs(t, store.AppendEvent(ctx, nil), subscription.ErrInvalidRecord)
	assert.ErrorIs(t, store.AppendEvent(ctx, &subscription.EventRecord{}), subscription.ErrInvalidRecord)
}

func TestConcurrentUpserts(t *testing.T) {
	store := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(active bool) {
			defer wg.Done()
			_ = store.UpsertSubscription(ctx, &subscription.Subscription{
				Email: "user@test.com", Active: active, UpdatedAt: time.Now().UTC(),
			})
		}(i%2 == 0)
	}
	wg.Wait()

	// Last writer wins; the row must simply remain consistent.
	got, err := store.GetSubscription(ctx, "user@test.com")
	require.NoError(t, err)
	assert.Equal(t, "user@test.com", got.Email)
}
