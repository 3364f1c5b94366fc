package cashflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
	"vibooks/internal/domain/ledger"
	"vibooks/internal/domain/reports/balancesheet"
	"vibooks/internal/domain/reports/trialbalance"
)

type stubProvider struct {
	balances []ledger.AccountBalance
}

func (s *stubProvider) GetBalances(context.Context, period.Descriptor) ([]ledger.AccountBalance, error) {
	return s.balances, nil
}

type stubLocks struct {
	locked bool
}

func (s *stubLocks) IsLocked(context.Context, period.Period) (bool, error) {
	return s.locked, nil
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

func newService(balances []ledger.AccountBalance, locked bool) *Service {
	tb := trialbalance.NewService(&stubProvider{balances: balances}, ledger.DefaultChart())
	bs := balancesheet.NewService(tb)
	return NewService(tb, bs, &stubLocks{locked: locked})
}

func buildFor(t *testing.T, balances []ledger.AccountBalance) *Report {
	t.Helper()
	svc := newService(balances, true)
	report, err := svc.Build(context.Background(), period.Descriptor{Period: period.MustParse("2025-03")})
	require.NoError(t, err)
	return report
}

// A cash trading month: sale with VAT collected in cash, goods shipped from
// opening inventory, income tax partly paid. The reconciliation must close
// exactly.
func tradingMonth() []ledger.AccountBalance {
	return []ledger.AccountBalance{
		bal("111", "20000", "0", "110000", "3000"),
		bal("156", "60000", "0", "0", "60000"),
		bal("411", "0", "80000", "0", "0"),
		bal("511", "0", "0", "0", "100000"),
		bal("632", "0", "0", "60000", "0"),
		bal("821", "0", "0", "8000", "0"),
		bal("333", "0", "0", "3000", "18000"),
		// income tax sub-account: 8,000 accrued, 3,000 paid
		{AccountCode: "3334", PeriodDebit: types.MustMoney("3000"), PeriodCredit: types.MustMoney("8000")},
	}
}

func TestBuild_TradingMonthReconciles(t *testing.T) {
	report := buildFor(t, tradingMonth())

	assert.Equal(t, "107000", report.Operating.String())
	assert.True(t, report.Investing.IsZero())
	assert.True(t, report.Financing.IsZero())
	assert.Equal(t, "107000", report.NetCashFlow.String())
	assert.Equal(t, "20000", report.CashBeginning.String())
	assert.Equal(t, "127000", report.CashEndingCalculated.String())
	assert.Equal(t, "127000", report.CashEndingActual.String())

	assert.True(t, report.Validation.IsValid)
	assert.True(t, report.Validation.CanSubmit)
	assert.True(t, report.Validation.Difference.IsZero())
	assert.Empty(t, report.Validation.Errors)

	inventory := report.RowByCode("10")
	require.NotNil(t, inventory)
	assert.Equal(t, "60000", inventory.Amount.String())

	payables := report.RowByCode("11")
	require.NotNil(t, payables)
	assert.Equal(t, "10000", payables.Amount.String())

	taxPaid := report.RowByCode("15")
	require.NotNil(t, taxPaid)
	assert.Equal(t, "-3000", taxPaid.Amount.String())
	assert.True(t, taxPaid.IsNegative)
}

func TestBuild_InvestingAndFinancing(t *testing.T) {
	report := buildFor(t, []ledger.AccountBalance{
		bal("111", "10000", "0", "70000", "30000"),
		bal("211", "0", "0", "30000", "0"),
		bal("214", "0", "0", "0", "2000"),
		bal("341", "0", "0", "0", "50000"),
		bal("411", "0", "10000", "0", "20000"),
		bal("642", "0", "0", "2000", "0"),
	})

	assert.True(t, report.Operating.IsZero()) // loss fully offset by depreciation
	assert.Equal(t, "-30000", report.Investing.String())
	assert.Equal(t, "70000", report.Financing.String())
	assert.Equal(t, "40000", report.NetCashFlow.String())
	assert.Equal(t, "50000", report.CashEndingCalculated.String())
	assert.True(t, report.Validation.IsValid)

	capex := report.RowByCode("21")
	require.NotNil(t, capex)
	assert.Equal(t, "-30000", capex.Amount.String())

	borrowed := report.RowByCode("33")
	require.NotNil(t, borrowed)
	assert.Equal(t, "50000", borrowed.Amount.String())

	contributions := report.RowByCode("31")
	require.NotNil(t, contributions)
	assert.Equal(t, "20000", contributions.Amount.String())
}

// Positive profit, negative operating cash: everything sold on credit while
// expenses went out in cash. The gap must be narrated, not flagged.
func TestBuild_ProfitVersusCashExplanations(t *testing.T) {
	report := buildFor(t, []ledger.AccountBalance{
		bal("111", "10000", "0", "0", "5000"),
		bal("156", "60000", "0", "0", "60000"),
		bal("411", "0", "70000", "0", "0"),
		bal("131", "0", "0", "100000", "0"),
		bal("511", "0", "0", "0", "100000"),
		bal("632", "0", "0", "60000", "0"),
		bal("642", "0", "0", "5000", "0"),
		bal("821", "0", "0", "8000", "0"),
		bal("333", "0", "0", "0", "8000"),
		{AccountCode: "3334", PeriodCredit: types.MustMoney("8000")},
	})

	assert.Equal(t, "-5000", report.Operating.String())
	assert.True(t, report.Validation.IsValid)

	require.NotEmpty(t, report.Explanations)
	assert.Contains(t, report.Explanations[0], "net profit")

	receivables := report.RowByCode("09")
	require.NotNil(t, receivables)
	assert.Equal(t, "-100000", receivables.Amount.String())
}

func TestBuild_RequiresLock(t *testing.T) {
	svc := newService(tradingMonth(), false)
	_, err := svc.Build(context.Background(), period.Descriptor{Period: period.MustParse("2025-03")})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePrerequisitesNotMet, appErr.Code)

	reasons := appErr.Details["reasons"].([]string)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "not locked")
}

func TestBuildDraft_SkipsLockRequirement(t *testing.T) {
	svc := newService(tradingMonth(), false)
	report, err := svc.BuildDraft(context.Background(), period.Descriptor{Period: period.MustParse("2025-03")})
	require.NoError(t, err)
	assert.True(t, report.Validation.IsValid)
}

// All blockers are reported together: unbalanced books and a missing lock.
func TestBuild_PrerequisitesAccumulated(t *testing.T) {
	svc := newService([]ledger.AccountBalance{
		bal("411", "0", "0", "0", "5000"),
	}, false)
	_, err := svc.Build(context.Background(), period.Descriptor{Period: period.MustParse("2025-03")})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	reasons := appErr.Details["reasons"].([]string)
	assert.Len(t, reasons, 2)
}

func TestValidate_DiscrepancyThresholds(t *testing.T) {
	mk := func(calculated, actual string) Validation {
		return validate(&Report{
			CashEndingCalculated: types.MustMoney(calculated),
			CashEndingActual:     types.MustMoney(actual),
		})
	}

	exact := mk("100", "100")
	assert.True(t, exact.IsValid)
	assert.Empty(t, exact.Warnings)
	assert.Empty(t, exact.Errors)

	// Past the balance tolerance but inside a currency unit: flagged, valid.
	small := mk("100.02", "100")
	assert.True(t, small.IsValid)
	assert.NotEmpty(t, small.Warnings)
	assert.Empty(t, small.Errors)

	large := mk("105", "100")
	assert.False(t, large.IsValid)
	assert.False(t, large.CanSubmit)
	require.NotEmpty(t, large.Errors)
	assert.Contains(t, large.Errors[0], "5")
}
