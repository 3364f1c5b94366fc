package balancesheet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
	"vibooks/internal/domain/ledger"
	"vibooks/internal/domain/reports/trialbalance"
)

type stubProvider struct {
	balances []ledger.AccountBalance
}

func (s *stubProvider) GetBalances(context.Context, period.Descriptor) ([]ledger.AccountBalance, error) {
	return s.balances, nil
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

func buildFor(t *testing.T, balances []ledger.AccountBalance) (*Report, error) {
	t.Helper()
	tb := trialbalance.NewService(&stubProvider{balances: balances}, ledger.DefaultChart())
	svc := NewService(tb)
	return svc.Build(context.Background(), period.Descriptor{Period: period.MustParse("2025-03")})
}

func TestBuild_CapitalContribution(t *testing.T) {
	report, err := buildFor(t, []ledger.AccountBalance{
		bal("111", "0", "0", "50000000", "0"),
		bal("411", "0", "0", "0", "50000000"),
	})
	require.NoError(t, err)

	assert.Equal(t, "50000000", report.TotalAssets.String())
	assert.True(t, report.TotalLiabilities.IsZero())
	assert.Equal(t, "50000000", report.TotalEquity.String())
	assert.True(t, report.Validation.IsBalanced)
	assert.True(t, report.Validation.CanSubmit)
	assert.True(t, report.Validation.Difference.IsZero())

	cash := report.RowByCode("111")
	require.NotNil(t, cash)
	assert.Equal(t, "50000000", cash.Amount.String())
}

// A debit parked on the payables control account 338 has no asset-side
// template line, so the trial balance stays even while the statement comes
// up short; the report is still returned for display with the exact
// difference.
func TestBuild_UnbalancedStatementStillReturned(t *testing.T) {
	report, err := buildFor(t, []ledger.AccountBalance{
		bal("111", "0", "0", "50000000", "1000"),
		bal("338", "0", "0", "1000", "0"),
		bal("411", "0", "0", "0", "50000000"),
	})
	require.NoError(t, err)

	assert.Equal(t, "49999000", report.TotalAssets.String())
	assert.Equal(t, "50000000", report.TotalEquity.String())
	assert.False(t, report.Validation.IsBalanced)
	assert.False(t, report.Validation.CanSubmit)
	assert.Equal(t, "1000", report.Validation.Difference.String())
	require.NotEmpty(t, report.Validation.Errors)
}

func TestBuild_AmphibiousSupplierPrepayment(t *testing.T) {
	// Opening cash funded by capital; 2,000 paid to a supplier in advance.
	report, err := buildFor(t, []ledger.AccountBalance{
		bal("111", "10000", "0", "0", "2000"),
		bal("331", "0", "0", "2000", "0"),
		bal("411", "0", "10000", "0", "0"),
	})
	require.NoError(t, err)

	prepayments := report.RowByCode("132")
	require.NotNil(t, prepayments)
	assert.Equal(t, "2000", prepayments.Amount.String())

	payables := report.RowByCode("311")
	require.NotNil(t, payables)
	assert.True(t, payables.Amount.IsZero())

	assert.Equal(t, "10000", report.TotalAssets.String())
	assert.True(t, report.Validation.IsBalanced)
}

func TestBuild_AccumulatedDepreciationIsNegative(t *testing.T) {
	report, err := buildFor(t, []ledger.AccountBalance{
		bal("211", "5000", "0", "0", "0"),
		bal("214", "0", "1000", "0", "0"),
		bal("411", "0", "4000", "0", "0"),
	})
	require.NoError(t, err)

	gross := report.RowByCode("221")
	require.NotNil(t, gross)
	assert.Equal(t, "5000", gross.Amount.String())

	depreciation := report.RowByCode("223")
	require.NotNil(t, depreciation)
	assert.Equal(t, "-1000", depreciation.Amount.String())

	fixedAssets := report.RowByCode("220")
	require.NotNil(t, fixedAssets)
	assert.Equal(t, "4000", fixedAssets.Amount.String())

	assert.Equal(t, "4000", report.TotalAssets.String())
	assert.True(t, report.Validation.IsBalanced)
}

func TestBuild_AccumulatedLossShowsNegativeEquity(t *testing.T) {
	report, err := buildFor(t, []ledger.AccountBalance{
		bal("111", "9000", "0", "0", "0"),
		bal("411", "0", "10000", "0", "0"),
		bal("421", "1000", "0", "0", "0"), // accumulated loss, net debit
	})
	require.NoError(t, err)

	retained := report.RowByCode("421")
	require.NotNil(t, retained)
	assert.Equal(t, "-1000", retained.Amount.String())
	assert.Equal(t, "9000", report.TotalEquity.String())
	assert.True(t, report.Validation.IsBalanced)
	assert.True(t, report.Validation.CanSubmit)
}

func TestBuild_NegativeTotalAssetsIsHardError(t *testing.T) {
	// Provision for losses exceeds everything the company owns. The books
	// balance, but a negative asset total must block submission outright.
	report, err := buildFor(t, []ledger.AccountBalance{
		bal("229", "0", "1000", "0", "0"),
		bal("421", "1000", "0", "0", "0"),
	})
	require.NoError(t, err)

	assert.Equal(t, "-1000", report.TotalAssets.String())
	assert.True(t, report.Validation.IsBalanced)
	assert.False(t, report.Validation.CanSubmit)
	require.NotEmpty(t, report.Validation.Errors)
}

// Every blocking reason surfaces at once, not just the first.
func TestBuild_PrerequisitesAccumulated(t *testing.T) {
	_, err := buildFor(t, []ledger.AccountBalance{
		bal("111", "0", "0", "0", "5000"), // cash driven negative, books uneven
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePrerequisitesNotMet, appErr.Code)

	reasons, ok := appErr.Details["reasons"].([]string)
	require.True(t, ok)
	// Period and closing checks both fail, and the cash account is abnormal.
	assert.Len(t, reasons, 3)
}

func TestTemplate_SumLinesReferenceDeclaredLines(t *testing.T) {
	byCode := map[string]bool{}
	for _, line := range Template() {
		assert.False(t, byCode[line.Code], "duplicate line %s", line.Code)
		byCode[line.Code] = true
		assert.False(t, len(line.SumOf) > 0 && len(line.Mappings) > 0,
			"line %s both maps accounts and sums lines", line.Code)
	}
	for _, line := range Template() {
		for _, child := range line.SumOf {
			assert.True(t, byCode[child], "line %s sums undeclared line %s", line.Code, child)
		}
	}
}
