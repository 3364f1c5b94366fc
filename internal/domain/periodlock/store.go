package periodlock

import (
	"context"

	"vibooks/internal/core/period"
	"vibooks/internal/domain/audit"
)

// Store persists lock records and their audit trail.
//
// CompareAndSwap is the only mutation: it writes the lock and its audit
// event atomically, guarded by the version the caller evaluated its
// checklist against. A version mismatch yields
// apperror.NewConcurrentModification, which callers surface as-is.
type Store interface {
	// Get returns the lock for a period, or nil when none was ever stored
	// (the period is implicitly OPEN).
	Get(ctx context.Context, p period.Period) (*Lock, error)

	// List returns every stored lock for a calendar year, ordered by period.
	List(ctx context.Context, year int) ([]Lock, error)

	// History returns the period's audit events, oldest first.
	History(ctx context.Context, p period.Period) ([]audit.LockEvent, error)

	// CompareAndSwap stores the lock if the current stored version equals
	// expectedVersion (zero for a period never stored), increments the
	// version, and records the event in the same transaction.
	CompareAndSwap(ctx context.Context, lock *Lock, expectedVersion int64, event audit.LockEvent) error
}
