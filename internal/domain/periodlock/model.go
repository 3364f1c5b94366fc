// Package periodlock implements the period locking state machine guarding
// the books against retroactive mutation: OPEN -> LOCKED -> CLOSED, with an
// authorized unlock edge back from LOCKED to OPEN.
package periodlock

import (
	"time"

	"vibooks/internal/core/period"
)

// Status is a period's lock state.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusLocked Status = "LOCKED"
	// StatusClosed is terminal. There is no edge out of CLOSED.
	StatusClosed Status = "CLOSED"
)

// validTransitions enumerates every legal edge of the state machine.
var validTransitions = map[Status][]Status{
	StatusOpen:   {StatusLocked},
	StatusLocked: {StatusOpen, StatusClosed},
	StatusClosed: {},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Lock is the mutable lock record for one period. A period with no stored
// record is implicitly OPEN at version zero.
type Lock struct {
	Period period.Period `db:"-" json:"-"`

	PeriodID string `db:"period" json:"period"`
	Status   Status `db:"status" json:"status"`

	// Version increments on every transition; CompareAndSwap rejects a
	// transition when the stored version moved since the checklist was
	// evaluated.
	Version int64 `db:"version" json:"version"`

	LockedBy     string     `db:"locked_by" json:"lockedBy,omitempty"`
	LockedByName string     `db:"locked_by_name" json:"lockedByName,omitempty"`
	LockedAt     *time.Time `db:"locked_at" json:"lockedAt,omitempty"`

	UnlockedBy     string     `db:"unlocked_by" json:"unlockedBy,omitempty"`
	UnlockedAt     *time.Time `db:"unlocked_at" json:"unlockedAt,omitempty"`
	UnlockReason   string     `db:"unlock_reason" json:"unlockReason,omitempty"`
	ClosedBy       string     `db:"closed_by" json:"closedBy,omitempty"`
	ClosedAt       *time.Time `db:"closed_at" json:"closedAt,omitempty"`
}

// IsLocked reports whether the period refuses modification.
func (l *Lock) IsLocked() bool {
	return l.Status == StatusLocked || l.Status == StatusClosed
}

// NewOpenLock returns the implicit OPEN record for a period without one.
func NewOpenLock(p period.Period) *Lock {
	return &Lock{Period: p, PeriodID: p.String(), Status: StatusOpen}
}
