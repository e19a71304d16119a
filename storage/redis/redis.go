// Package redis provides a Redis implementation of the subscription.Store
// interface. Subscription state lives in one hash per email, so an upsert is
// a single HSET and therefore atomic; audit records get ids from an INCR
// counter and are written together with their list index in one pipeline.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

// Store implements subscription.Store using Redis
type Store struct {
	client redis.UniversalClient
	config Config
}

// Config holds Redis store configuration
type Config struct {
	// KeyPrefix is prepended to all Redis keys (default: "lazybackend:")
	KeyPrefix string

	// EventTTL is the TTL for audit event keys (0 = no expiration, the
	// default: audit rows are retained indefinitely)
	EventTTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		KeyPrefix: "lazybackend:",
	}
}

// New creates a new Redis store
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring
func New(client redis.UniversalClient, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "lazybackend:"
	}

	return &Store{client: client, config: config}, nil
}

func (s *Store) subscriptionKey(email string) string {
	return s.config.KeyPrefix + "subscription:" + email
}

func (s *Store) eventKey(id int64) string {
	return fmt.Sprintf("%swebhook_event:%d", s.config.KeyPrefix, id)
}

// UpsertSubscription implements subscription.Store. A single HSET overwrites
// all fields atomically, so concurrent writers resolve to last-commit-wins.
func (s *Store) UpsertSubscription(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil || sub.Email == "" {
		return subscription.ErrInvalidRecord
	}

	err := s.client.HSet(ctx, s.subscriptionKey(sub.Email),
		"email", sub.Email,
		"active", sub.Active,
		"updated_at", sub.UpdatedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

// GetSubscription implements subscription.Store
func (s *Store) GetSubscription(ctx context.Context, email string) (*subscription.Subscription, error) {
	fields, err := s.client.HGetAll(ctx, s.subscriptionKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if len(fields) == 0 {
		return nil, subscription.ErrSubscriptionNotFound
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &subscription.Subscription{
		Email:     fields["email"],
		Active:    fields["active"] == "1" || fields["active"] == "true",
		UpdatedAt: updatedAt,
	}, nil
}

// AppendEvent implements subscription.Store
func (s *Store) AppendEvent(ctx context.Context, rec *subscription.EventRecord) error {
	if rec == nil || rec.Raw == nil {
		return subscription.ErrInvalidRecord
	}

	id, err := s.client.Incr(ctx, s.config.KeyPrefix+"webhook_event:id").Result()
	if err != nil {
		return fmt.Errorf("failed to allocate event id: %w", err)
	}

	rec.ID = id
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal event record: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.eventKey(id), data, s.config.EventTTL)
		pipe.RPush(ctx, s.config.KeyPrefix+"webhook_events", id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append webhook event: %w", err)
	}

	return nil
}
