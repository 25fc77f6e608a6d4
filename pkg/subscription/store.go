package subscription

import (
	"context"
	"time"
)

// Store persists subscriber records. Every mutation is an atomic
// conditional operation; implementations report the distinct outcomes
// through the package sentinels rather than collapsing them into a generic
// failure:
//
//   - ErrSubscriberNotFound: no record for the subscriber id
//   - ErrTagMismatch: a record exists but its tag differs (implementations
//     must compare tags in constant time)
//   - ErrUpdateConflict: a compare-and-set lost to a concurrent writer
//
// The Manager relies on these conditional semantics instead of holding any
// lock of its own.
type Store interface {
	// Get returns the record for (subscriberID, tag).
	Get(ctx context.Context, subscriberID, tag []byte) (Record, error)

	// Create inserts a new record with the given credentials and creation
	// time. If a record already exists with the same tag the existing
	// record is returned, so concurrent first registrations converge. If it
	// exists with a different tag, Create returns ErrTagMismatch.
	Create(ctx context.Context, subscriberID, tag []byte, now time.Time) (Record, error)

	// TouchAccessedAt refreshes the last-access time of an existing record.
	TouchAccessedAt(ctx context.Context, subscriberID []byte, now time.Time) error

	// MarkCanceledAt records the logical deletion time. The record stays
	// queryable afterwards.
	MarkCanceledAt(ctx context.Context, subscriberID []byte, now time.Time) error

	// SetProcessorCustomer writes the processor customer reference as a
	// compare-and-set against the prior snapshot: it succeeds only while
	// the record still has no processor customer. A lost race returns
	// ErrUpdateConflict and the caller re-reads.
	SetProcessorCustomer(ctx context.Context, prior Record, customer ProcessorCustomer, now time.Time) (Record, error)

	// SubscriptionCreated records a newly created remote subscription:
	// subscription id, level and creation time are set together.
	SubscriptionCreated(ctx context.Context, subscriberID []byte, subscriptionID string, now time.Time, level int64) error

	// SubscriptionLevelChanged records the level and (possibly re-issued)
	// subscription id after an update with the payment provider.
	SubscriptionLevelChanged(ctx context.Context, subscriberID []byte, now time.Time, level int64, subscriptionID string) error
}
