package subscription

import "errors"

var (
	// ErrSubscriptionNotFound is returned when no row exists for an email
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrInvalidRecord is returned for records missing required fields
	ErrInvalidRecord = errors.New("invalid record")

	// ErrStoreUnavailable is returned when the datastore cannot be reached
	ErrStoreUnavailable = errors.New("store unavailable")
)
