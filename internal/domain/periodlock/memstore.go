package periodlock

import (
	"context"
	"sort"
	"sync"
	"time"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/id"
	"vibooks/internal/core/period"
	"vibooks/internal/domain/audit"
)

// MemoryStore is an in-memory Store for tests and embedded use. A single
// mutex serializes transitions, which also satisfies the
// single-writer-per-period discipline.
type MemoryStore struct {
	mu     sync.RWMutex
	locks  map[string]*Lock
	events map[string][]audit.LockEvent
	sink   audit.Sink
}

// NewMemoryStore creates an empty store. The sink may be nil; events are
// always retrievable through History either way.
func NewMemoryStore(sink audit.Sink) *MemoryStore {
	return &MemoryStore{
		locks:  make(map[string]*Lock),
		events: make(map[string][]audit.LockEvent),
		sink:   sink,
	}
}

func (s *MemoryStore) Get(_ context.Context, p period.Period) (*Lock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lock, ok := s.locks[p.String()]
	if !ok {
		return nil, nil
	}
	cp := *lock
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, year int) ([]Lock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Lock
	for _, lock := range s.locks {
		if lock.Period.Year == year {
			out = append(out, *lock)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodID < out[j].PeriodID })
	return out, nil
}

func (s *MemoryStore) History(_ context.Context, p period.Period) ([]audit.LockEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[p.String()]
	out := make([]audit.LockEvent, len(events))
	copy(out, events)
	return out, nil
}

func (s *MemoryStore) CompareAndSwap(ctx context.Context, lock *Lock, expectedVersion int64, event audit.LockEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := int64(0)
	if stored, ok := s.locks[lock.PeriodID]; ok {
		current = stored.Version
	}
	if current != expectedVersion {
		return apperror.NewConcurrentModification("period_lock", lock.PeriodID)
	}

	if id.IsNil(event.ID) {
		event.ID = id.New()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	// The sink gates the swap: a transition that cannot be audited is not
	// applied, mirroring the transactional store.
	if s.sink != nil {
		if err := s.sink.RecordLockEvent(ctx, event); err != nil {
			return err
		}
	}

	cp := *lock
	cp.Version = expectedVersion + 1
	s.locks[cp.PeriodID] = &cp
	s.events[cp.PeriodID] = append(s.events[cp.PeriodID], event)
	return nil
}
