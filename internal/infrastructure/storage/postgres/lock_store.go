package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/period"
	"vibooks/internal/domain/audit"
	"vibooks/internal/domain/periodlock"
)

var _ periodlock.Store = (*LockStore)(nil)

// LockStore persists period lock records with optimistic versioning. The
// lock row and its audit event are written in one transaction.
type LockStore struct {
	txManager *TxManager
	sink      audit.Sink
	builder   squirrel.StatementBuilderType
}

func NewLockStore(txManager *TxManager, sink audit.Sink) *LockStore {
	return &LockStore{
		txManager: txManager,
		sink:      sink,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (s *LockStore) Get(ctx context.Context, p period.Period) (*periodlock.Lock, error) {
	query, args, err := s.builder.
		Select("period", "status", "version",
			"locked_by", "locked_by_name", "locked_at",
			"unlocked_by", "unlocked_at", "unlock_reason",
			"closed_by", "closed_at").
		From("period_locks").
		Where(squirrel.Eq{"period": p.String()}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var lock periodlock.Lock
	querier := s.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &lock, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, apperror.NewDatabase("get period lock", err)
	}
	lock.Period = p
	return &lock, nil
}

func (s *LockStore) List(ctx context.Context, year int) ([]periodlock.Lock, error) {
	query, args, err := s.builder.
		Select("period", "status", "version",
			"locked_by", "locked_by_name", "locked_at",
			"unlocked_by", "unlocked_at", "unlock_reason",
			"closed_by", "closed_at").
		From("period_locks").
		Where(squirrel.Like{"period": period.NewYear(year).String() + "%"}).
		OrderBy("period").
		ToSql()
	if err != nil {
		return nil, err
	}

	var locks []periodlock.Lock
	querier := s.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &locks, query, args...); err != nil {
		return nil, apperror.NewDatabase("list period locks", err)
	}
	for i := range locks {
		if p, err := period.Parse(locks[i].PeriodID); err == nil {
			locks[i].Period = p
		}
	}
	return locks, nil
}

func (s *LockStore) History(ctx context.Context, p period.Period) ([]audit.LockEvent, error) {
	query, args, err := s.builder.
		Select("id", "period", "before_status", "after_status",
			"actor_id", "actor_name", "reason", "occurred_at").
		From("period_lock_events").
		Where(squirrel.Eq{"period": p.String()}).
		OrderBy("occurred_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var events []audit.LockEvent
	querier := s.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &events, query, args...); err != nil {
		return nil, apperror.NewDatabase("load lock history", err)
	}
	return events, nil
}

// CompareAndSwap commits the transition and its audit event atomically. A
// zero expected version inserts; anything else updates guarded by the
// stored version. No row touched means another writer got there first.
func (s *LockStore) CompareAndSwap(ctx context.Context, lock *periodlock.Lock, expectedVersion int64, event audit.LockEvent) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := s.txManager.GetQuerier(ctx)

		var affected int64
		if expectedVersion == 0 {
			tag, err := querier.Exec(ctx, `
				INSERT INTO period_locks (
					period, status, version,
					locked_by, locked_by_name, locked_at,
					unlocked_by, unlocked_at, unlock_reason,
					closed_by, closed_at
				) VALUES ($1, $2, 1, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (period) DO NOTHING`,
				lock.PeriodID, lock.Status,
				nullable(lock.LockedBy), nullable(lock.LockedByName), lock.LockedAt,
				nullable(lock.UnlockedBy), lock.UnlockedAt, nullable(lock.UnlockReason),
				nullable(lock.ClosedBy), lock.ClosedAt,
			)
			if err != nil {
				return apperror.NewDatabase("insert period lock", err)
			}
			affected = tag.RowsAffected()
		} else {
			tag, err := querier.Exec(ctx, `
				UPDATE period_locks SET
					status = $2, version = version + 1,
					locked_by = $3, locked_by_name = $4, locked_at = $5,
					unlocked_by = $6, unlocked_at = $7, unlock_reason = $8,
					closed_by = $9, closed_at = $10
				WHERE period = $1 AND version = $11`,
				lock.PeriodID, lock.Status,
				nullable(lock.LockedBy), nullable(lock.LockedByName), lock.LockedAt,
				nullable(lock.UnlockedBy), lock.UnlockedAt, nullable(lock.UnlockReason),
				nullable(lock.ClosedBy), lock.ClosedAt,
				expectedVersion,
			)
			if err != nil {
				return apperror.NewDatabase("update period lock", err)
			}
			affected = tag.RowsAffected()
		}

		if affected == 0 {
			return apperror.NewConcurrentModification("period_lock", lock.PeriodID)
		}

		// The sink writes through the same transaction carried by ctx.
		return s.sink.RecordLockEvent(ctx, event)
	})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
