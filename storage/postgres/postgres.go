// Package postgres provides a PostgreSQL implementation of the
// subscription.Store interface. Subscription writes use a single
// INSERT ... ON CONFLICT statement so concurrent updates for the same email
// resolve to last-commit-wins without application-level locking.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

// Store implements subscription.Store using PostgreSQL
type Store struct {
	pool   *pgxpool.Pool
	config Config
}

// Config holds PostgreSQL store configuration
type Config struct {
	// ConnectionString is the PostgreSQL connection string
	ConnectionString string

	// Pool configuration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// New creates a new PostgreSQL store
func New(ctx context.Context, config Config) (*Store, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %v", subscription.ErrStoreUnavailable, err)
	}

	return &Store{pool: pool, config: config}, nil
}

// Close closes the PostgreSQL connection pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the schema if it does not exist. Idempotent; run once at
// process startup, not per request.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			email      TEXT PRIMARY KEY,
			active     BOOLEAN NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create subscriptions table: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS webhook_events (
			id          BIGSERIAL PRIMARY KEY,
			received_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			event       TEXT,
			email       TEXT,
			raw         JSONB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create webhook_events table: %w", err)
	}

	return nil
}

// UpsertSubscription implements subscription.Store
func (s *Store) UpsertSubscription(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil || sub.Email == "" {
		return subscription.ErrInvalidRecord
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO subscriptions (email, active, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE SET
				active = EXCLUDED.active,
				updated_at = EXCLUDED.updated_at`,
		sub.Email, sub.Active, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

// GetSubscription implements subscription.Store
func (s *Store) GetSubscription(ctx context.Context, email string) (*subscription.Subscription, error) {
	var sub subscription.Subscription

	err := s.pool.QueryRow(ctx,
		`SELECT email, active, updated_at FROM subscriptions WHERE email = $1`,
		email).Scan(&sub.Email, &sub.Active, &sub.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, subscription.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &sub, nil
}

// AppendEvent implements subscription.Store. Empty event/email are stored as
// NULL so the audit table distinguishes absent values from empty strings.
func (s *Store) AppendEvent(ctx context.Context, rec *subscription.EventRecord) error {
	if rec == nil || rec.Raw == nil {
		return subscription.ErrInvalidRecord
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO webhook_events (event, email, raw)
			VALUES (NULLIF($1, ''), NULLIF($2, ''), $3)
			RETURNING id, received_at`,
		rec.Event, rec.Email, rec.Raw,
	).Scan(&rec.ID, &rec.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to append webhook event: %w", err)
	}

	return nil
}
