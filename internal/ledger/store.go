package ledger

import (
	"context"
	"time"
)

var (
	// QueryTimeoutDuration bounds every store round trip.
	QueryTimeoutDuration = time.Second * 5

	// DefaultListLimit caps ListRecent when the caller passes no bound, so a
	// durable store never returns an unbounded result set.
	DefaultListLimit = 100
)

// Store is the append-only payment ledger shared by the webhook and the
// transaction listing.
//
// Append inserts the record unless one with the same reference already
// exists; the duplicate case is a no-op (first writer wins) and is how
// provider retries stay idempotent. It returns the stored record and whether
// this call created it.
//
// ListRecent returns records ordered by paid_at descending, ties broken by
// later insertion first. limit <= 0 falls back to DefaultListLimit.
type Store interface {
	Append(ctx context.Context, payment *Payment) (*Payment, bool, error)
	ListRecent(ctx context.Context, limit int) ([]Payment, error)
}
