// Package audit defines the lock-event audit trail contract.
//
// Every period lock transition must emit exactly one event, persisted in the
// same transaction as the state change: no lock without audit, no audit
// without a real transition.
package audit

import (
	"context"
	"sync"
	"time"

	"vibooks/internal/core/id"
)

// LockEvent is an immutable record of one lock state transition.
type LockEvent struct {
	ID        id.ID     `db:"id" json:"id"`
	Period    string    `db:"period" json:"period"`
	Before    string    `db:"before_status" json:"before"`
	After     string    `db:"after_status" json:"after"`
	ActorID   string    `db:"actor_id" json:"actorId"`
	ActorName string    `db:"actor_name" json:"actorName,omitempty"`
	Reason    string    `db:"reason" json:"reason,omitempty"`
	At        time.Time `db:"occurred_at" json:"at"`
}

// Sink records lock events. Implementations must persist the event within
// the transaction carried by ctx when one is active.
type Sink interface {
	RecordLockEvent(ctx context.Context, event LockEvent) error
}

// MemorySink keeps events in memory. Used in tests and by the in-memory
// lock store.
type MemorySink struct {
	mu     sync.Mutex
	events []LockEvent
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// RecordLockEvent appends the event.
func (s *MemorySink) RecordLockEvent(_ context.Context, event LockEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id.IsNil(event.ID) {
		event.ID = id.New()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of all recorded events in order.
func (s *MemorySink) Events() []LockEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LockEvent, len(s.events))
	copy(out, s.events)
	return out
}

// ByPeriod returns recorded events for one period in order.
func (s *MemorySink) ByPeriod(period string) []LockEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []LockEvent
	for _, e := range s.events {
		if e.Period == period {
			out = append(out, e)
		}
	}
	return out
}
