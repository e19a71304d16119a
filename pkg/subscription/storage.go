package subscription

import "context"

// Store is the persistence contract for subscription state and the webhook
// audit log. Implementations live under storage/.
//
// UpsertSubscription must be a single atomic conditional write (insert or
// update keyed on email uniqueness) so that concurrent writers for the same
// email resolve to last-commit-wins without application-level locking.
type Store interface {
	// UpsertSubscription inserts the subscription row or overwrites the
	// existing row for the same email, advancing updated_at.
	UpsertSubscription(ctx context.Context, sub *Subscription) error

	// GetSubscription returns the current state for a normalized email.
	// Returns ErrSubscriptionNotFound when no row exists.
	GetSubscription(ctx context.Context, email string) (*Subscription, error)

	// AppendEvent writes one immutable audit record and fills in the
	// assigned ID and ReceivedAt on the passed record.
	AppendEvent(ctx context.Context, rec *EventRecord) error
}
