// Package memory provides an in-memory implementation of the
// subscription.Store interface. This implementation is primarily intended
// for testing and development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/felippelopes128-arch/lazy-backend/pkg/subscription"
)

// Store implements subscription.Store using in-memory maps
type Store struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription.Subscription
	events        []*subscription.EventRecord
	nextID        int64
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		subscriptions: make(map[string]*subscription.Subscription),
		nextID:        1,
	}
}

// UpsertSubscription implements subscription.Store
func (s *Store) UpsertSubscription(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil || sub.Email == "" {
		return subscription.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutations
	subCopy := *sub
	s.subscriptions[sub.Email] = &subCopy
	return nil
}

// GetSubscription implements subscription.Store
func (s *Store) GetSubscription(ctx context.Context, email string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[email]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}

	// Return a copy to prevent external mutations
	subCopy := *sub
	return &subCopy, nil
}

// AppendEvent implements subscription.Store
func (s *Store) AppendEvent(ctx context.Context, rec *subscription.EventRecord) error {
	if rec == nil || rec.Raw == nil {
		return subscription.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}

	recCopy := *rec
	s.events = append(s.events, &recCopy)
	return nil
}

// Events returns a snapshot of the audit log, oldest first.
func (s *Store) Events() []*subscription.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*subscription.EventRecord, 0, len(s.events))
	for _, rec := range s.events {
		recCopy := *rec
		out = append(out, &recCopy)
	}
	return out
}
