package periodlock

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/period"
	"vibooks/internal/core/security"
	"vibooks/internal/domain/audit"
	"vibooks/pkg/logger"
)

// MinUnlockReasonLength is the shortest acceptable unlock justification.
const MinUnlockReasonLength = 10

// Service drives the lock state machine. All transitions go through the
// store's CompareAndSwap so a checklist evaluated against a stale state can
// never commit.
type Service struct {
	store      Store
	statements StatementEvaluator
	journal    JournalStatus
}

func NewService(store Store, statements StatementEvaluator, journal JournalStatus) *Service {
	return &Service{store: store, statements: statements, journal: journal}
}

// Get returns the period's lock record, implicitly OPEN when none exists.
func (s *Service) Get(ctx context.Context, p period.Period) (*Lock, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	lock, err := s.store.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	if lock == nil {
		return NewOpenLock(p), nil
	}
	lock.Period = p
	return lock, nil
}

// List returns every stored lock of a calendar year.
func (s *Service) List(ctx context.Context, year int) ([]Lock, error) {
	return s.store.List(ctx, year)
}

// History returns the period's audit trail, oldest first.
func (s *Service) History(ctx context.Context, p period.Period) ([]audit.LockEvent, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.store.History(ctx, p)
}

// IsLocked reports whether the period refuses modification. Satisfies the
// cash flow builder's lock check.
func (s *Service) IsLocked(ctx context.Context, p period.Period) (bool, error) {
	lock, err := s.Get(ctx, p)
	if err != nil {
		return false, err
	}
	return lock.IsLocked(), nil
}

// CanModify tells mutation paths whether a write to the period may proceed.
func (s *Service) CanModify(ctx context.Context, p period.Period) (bool, string, error) {
	lock, err := s.Get(ctx, p)
	if err != nil {
		return false, "", err
	}
	switch lock.Status {
	case StatusLocked:
		return false, fmt.Sprintf("period %s is locked; unlock it before making changes", p.String()), nil
	case StatusClosed:
		return false, fmt.Sprintf("period %s is closed and can no longer be changed", p.String()), nil
	default:
		return true, "", nil
	}
}

// GetLockChecklist evaluates the ordered pre-lock checklist. Statement
// checks run without the lock requirement; the previous-period check is
// skipped for the first period of a year.
func (s *Service) GetLockChecklist(ctx context.Context, p period.Period) (*Checklist, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	checks, err := s.statements.EvaluateStatements(ctx, p)
	if err != nil {
		return nil, err
	}

	items := []Item{
		requiredItem(CheckTrialBalanceBalanced, checks.TrialBalanceBalanced,
			"trial balance is not balanced"),
		requiredItem(CheckBalanceSheetValid, checks.BalanceSheetValid,
			"balance sheet is not valid"),
		requiredItem(CheckIncomeStatementValid, checks.IncomeStatementValid,
			"income statement is not valid"),
		requiredItem(CheckCashFlowValid, checks.CashFlowValid,
			"cash flow statement is not valid"),
	}

	prev := Item{Name: CheckPreviousPeriodLocked, Severity: SeverityRequired, Passed: true}
	if p.FirstOfYear() {
		prev.Skipped = true
		prev.Message = "first period of the year has no predecessor"
	} else {
		prevPeriod := p.Previous()
		locked, err := s.IsLocked(ctx, prevPeriod)
		if err != nil {
			return nil, err
		}
		prev.Passed = locked
		if !locked {
			prev.Message = fmt.Sprintf("previous period %s is not locked", prevPeriod.String())
		}
	}
	items = append(items, prev)

	if s.journal != nil {
		unapproved, err := s.journal.CountUnapprovedVouchers(ctx, p)
		if err != nil {
			return nil, err
		}
		items = append(items, warningItem(CheckVouchersApproved, unapproved == 0,
			fmt.Sprintf("%d voucher(s) are not yet approved", unapproved)))

		drafts, err := s.journal.CountDraftEntries(ctx, p)
		if err != nil {
			return nil, err
		}
		items = append(items, warningItem(CheckNoDraftEntries, drafts == 0,
			fmt.Sprintf("%d journal entr(ies) are still drafts", drafts)))
	}

	checklist := &Checklist{PeriodID: p.String(), Items: items, CanLock: true}
	for _, item := range items {
		if item.Severity == SeverityRequired && !item.Passed && !item.Skipped {
			checklist.CanLock = false
		}
	}
	return checklist, nil
}

// Lock transitions OPEN -> LOCKED. The checklist is re-derived here, and the
// store rejects the commit if the period's state moved since.
func (s *Service) Lock(ctx context.Context, p period.Period) (*Lock, error) {
	scope := security.NewAccessScope(ctx)
	if err := scope.RequirePermission(security.PermissionLockPeriod); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, StatusLocked) {
		return nil, apperror.NewInvalidTransition(p.String(), string(current.Status), string(StatusLocked))
	}

	checklist, err := s.GetLockChecklist(ctx, p)
	if err != nil {
		return nil, err
	}
	if !checklist.CanLock {
		return nil, apperror.NewPrerequisitesNotMet(checklist.FailedRequired())
	}

	now := time.Now().UTC()
	next := *current
	next.Status = StatusLocked
	next.LockedBy = scope.UserID
	next.LockedByName = scope.Name
	next.LockedAt = &now

	if err := s.transition(ctx, current, &next, ""); err != nil {
		return nil, err
	}
	logger.Info(ctx, "period locked", "period", p.String(), "actor", scope.UserID)
	return &next, nil
}

// Unlock transitions LOCKED -> OPEN. Unlock authority is a stricter tier
// than lock authority, and the reason is mandatory and audited.
func (s *Service) Unlock(ctx context.Context, p period.Period, reason string) (*Lock, error) {
	scope := security.NewAccessScope(ctx)
	if err := scope.RequirePermission(security.PermissionUnlockPeriod); err != nil {
		return nil, err
	}
	// Rune count, not bytes: accented Vietnamese reasons are multi-byte.
	if utf8.RuneCountInString(reason) < MinUnlockReasonLength {
		return nil, apperror.NewValidation(fmt.Sprintf(
			"unlock reason must be at least %d characters", MinUnlockReasonLength))
	}

	current, err := s.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, StatusOpen) {
		return nil, apperror.NewInvalidTransition(p.String(), string(current.Status), string(StatusOpen))
	}

	now := time.Now().UTC()
	next := *current
	next.Status = StatusOpen
	next.UnlockedBy = scope.UserID
	next.UnlockedAt = &now
	next.UnlockReason = reason

	if err := s.transition(ctx, current, &next, reason); err != nil {
		return nil, err
	}
	logger.Info(ctx, "period unlocked", "period", p.String(), "actor", scope.UserID, "reason", reason)
	return &next, nil
}

// Close transitions LOCKED -> CLOSED. There is no way back.
func (s *Service) Close(ctx context.Context, p period.Period) (*Lock, error) {
	scope := security.NewAccessScope(ctx)
	if err := scope.RequirePermission(security.PermissionClosePeriod); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, StatusClosed) {
		return nil, apperror.NewInvalidTransition(p.String(), string(current.Status), string(StatusClosed))
	}

	now := time.Now().UTC()
	next := *current
	next.Status = StatusClosed
	next.ClosedBy = scope.UserID
	next.ClosedAt = &now

	if err := s.transition(ctx, current, &next, ""); err != nil {
		return nil, err
	}
	logger.Info(ctx, "period closed", "period", p.String(), "actor", scope.UserID)
	return &next, nil
}

func (s *Service) transition(ctx context.Context, current, next *Lock, reason string) error {
	scope := security.NewAccessScope(ctx)
	event := audit.LockEvent{
		Period:    next.PeriodID,
		Before:    string(current.Status),
		After:     string(next.Status),
		ActorID:   scope.UserID,
		ActorName: scope.Name,
		Reason:    reason,
	}
	if err := s.store.CompareAndSwap(ctx, next, current.Version, event); err != nil {
		return err
	}
	next.Version = current.Version + 1
	return nil
}

func requiredItem(name string, passed bool, failMessage string) Item {
	item := Item{Name: name, Severity: SeverityRequired, Passed: passed}
	if !passed {
		item.Message = failMessage
	}
	return item
}

func warningItem(name string, passed bool, failMessage string) Item {
	item := Item{Name: name, Severity: SeverityWarning, Passed: passed}
	if !passed {
		item.Message = failMessage
	}
	return item
}
