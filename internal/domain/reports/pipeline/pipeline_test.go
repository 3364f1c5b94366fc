package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibooks/internal/core/apperror"
	appctx "vibooks/internal/core/context"
	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
	"vibooks/internal/domain/audit"
	"vibooks/internal/domain/ledger"
	"vibooks/internal/domain/periodlock"
	"vibooks/internal/domain/reports/balancesheet"
	"vibooks/internal/domain/reports/cashflow"
	"vibooks/internal/domain/reports/trialbalance"
)

type stubProvider struct {
	balances []ledger.AccountBalance
	err      error
}

func (s *stubProvider) GetBalances(context.Context, period.Descriptor) ([]ledger.AccountBalance, error) {
	return s.balances, s.err
}

type stubJournal struct{}

func (stubJournal) CountUnapprovedVouchers(context.Context, period.Period) (int, error) { return 0, nil }
func (stubJournal) CountDraftEntries(context.Context, period.Period) (int, error)       { return 0, nil }

// fixture wires the real pipeline and lock service together the way the
// server does: the pipeline backs the lock checklist, the lock service backs
// the pipeline's lock requirement.
func fixture(provider ledger.BalanceProvider) (*Service, *periodlock.Service) {
	tb := trialbalance.NewService(provider, ledger.DefaultChart())
	bs := balancesheet.NewService(tb)

	var locks *periodlock.Service
	pipe := NewService(tb, bs, cashflow.LockCheckerFunc(
		func(ctx context.Context, p period.Period) (bool, error) {
			return locks.IsLocked(ctx, p)
		}))
	locks = periodlock.NewService(periodlock.NewMemoryStore(audit.NewMemorySink()), pipe, stubJournal{})
	return pipe, locks
}

func bal(code, openingDebit, openingCredit, periodDebit, periodCredit string) ledger.AccountBalance {
	return ledger.AccountBalance{
		AccountCode:   code,
		OpeningDebit:  types.MustMoney(openingDebit),
		OpeningCredit: types.MustMoney(openingCredit),
		PeriodDebit:   types.MustMoney(periodDebit),
		PeriodCredit:  types.MustMoney(periodCredit),
	}
}

func balancedBooks() []ledger.AccountBalance {
	return []ledger.AccountBalance{
		bal("111", "20000", "0", "110000", "0"),
		bal("156", "60000", "0", "0", "60000"),
		bal("411", "0", "80000", "0", "0"),
		bal("511", "0", "0", "0", "100000"),
		bal("632", "0", "0", "60000", "0"),
		bal("333", "0", "0", "0", "10000"),
	}
}

func accountant() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID: "u-1",
		Name:   "Accountant",
		Roles:  []string{"accountant"},
	})
}

func TestRun_FullBundleAfterLock(t *testing.T) {
	pipe, locks := fixture(&stubProvider{balances: balancedBooks()})
	ctx := accountant()
	p := period.MustParse("2025-01")

	_, err := locks.Lock(ctx, p)
	require.NoError(t, err)

	bundle, err := pipe.Run(ctx, period.Descriptor{Period: p})
	require.NoError(t, err)
	require.NotNil(t, bundle.TrialBalance)
	require.NotNil(t, bundle.IncomeStatement)
	require.NotNil(t, bundle.BalanceSheet)
	require.NotNil(t, bundle.CashFlow)

	assert.True(t, bundle.TrialBalance.Check.IsFullyBalanced)
	assert.True(t, bundle.BalanceSheet.Validation.CanSubmit)
	assert.True(t, bundle.CashFlow.Validation.IsValid)
}

func TestRun_RequiresLock(t *testing.T) {
	pipe, _ := fixture(&stubProvider{balances: balancedBooks()})

	_, err := pipe.Run(accountant(), period.Descriptor{Period: period.MustParse("2025-01")})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePrerequisitesNotMet, appErr.Code)
	reasons := appErr.Details["reasons"].([]string)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "not locked")
}

func TestRunDraft_WorksBeforeLock(t *testing.T) {
	pipe, _ := fixture(&stubProvider{balances: balancedBooks()})
	bundle, err := pipe.RunDraft(accountant(), period.Descriptor{Period: period.MustParse("2025-01")})
	require.NoError(t, err)
	assert.True(t, bundle.CashFlow.Validation.IsValid)
}

// The checklist's statement checks pass before the period is locked, which
// is what makes locking possible at all.
func TestEvaluateStatements_PreLock(t *testing.T) {
	pipe, _ := fixture(&stubProvider{balances: balancedBooks()})

	checks, err := pipe.EvaluateStatements(context.Background(), period.MustParse("2025-01"))
	require.NoError(t, err)
	assert.True(t, checks.TrialBalanceBalanced)
	assert.True(t, checks.BalanceSheetValid)
	assert.True(t, checks.IncomeStatementValid)
	assert.True(t, checks.CashFlowValid)
}

func TestEvaluateStatements_UnbalancedBooks(t *testing.T) {
	pipe, _ := fixture(&stubProvider{balances: []ledger.AccountBalance{
		bal("111", "0", "0", "5000", "0"),
	}})

	checks, err := pipe.EvaluateStatements(context.Background(), period.MustParse("2025-01"))
	require.NoError(t, err)
	assert.False(t, checks.TrialBalanceBalanced)
	assert.False(t, checks.BalanceSheetValid)
	assert.False(t, checks.IncomeStatementValid)
	assert.False(t, checks.CashFlowValid)
}

// Identical inputs and lock state yield byte-identical bundles.
func TestRun_Idempotent(t *testing.T) {
	pipe, locks := fixture(&stubProvider{balances: balancedBooks()})
	ctx := accountant()
	p := period.MustParse("2025-01")
	_, err := locks.Lock(ctx, p)
	require.NoError(t, err)

	first, err := pipe.Run(ctx, period.Descriptor{Period: p})
	require.NoError(t, err)
	second, err := pipe.Run(ctx, period.Descriptor{Period: p})
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRun_ProviderFailurePropagates(t *testing.T) {
	pipe, _ := fixture(&stubProvider{err: assert.AnError})
	_, err := pipe.Run(accountant(), period.Descriptor{Period: period.MustParse("2025-01")})
	require.Error(t, err)
	assert.True(t, apperror.IsRetryable(err))
}
