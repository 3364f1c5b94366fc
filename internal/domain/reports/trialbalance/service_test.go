package trialbalance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
	"vibooks/internal/domain/ledger"
)

type stubProvider struct {
	balances []ledger.AccountBalance
	err      error
}

func (s *stubProvider) GetBalances(context.Context, period.Descriptor) ([]ledger.AccountBalance, error) {
	return s.balances, s.err
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

func buildFor(t *testing.T, balances []ledger.AccountBalance, filter Filter) *Report {
	t.Helper()
	svc := NewService(&stubProvider{balances: balances}, ledger.DefaultChart())
	if filter.Descriptor.Period.Type == "" {
		filter.Descriptor.Period = period.MustParse("2025-03")
	}
	report, err := svc.Build(context.Background(), filter)
	require.NoError(t, err)
	return report
}

func TestBuild_BalancedBooks(t *testing.T) {
	report := buildFor(t, []ledger.AccountBalance{
		bal("111", "0", "0", "50000000", "0"),
		bal("411", "0", "0", "0", "50000000"),
	}, Filter{})

	assert.True(t, report.Check.Period.Balanced)
	assert.True(t, report.Check.Closing.Balanced)
	assert.True(t, report.Check.IsFullyBalanced)
	assert.True(t, report.Check.CanGenerateReport)

	row := report.RowByCode("111")
	require.NotNil(t, row)
	assert.Equal(t, "50000000", row.ClosingDebit.String())
	assert.True(t, row.ClosingCredit.IsZero())
}

// Randomly generated entries that net to zero in aggregate must always
// produce a balanced trial balance.
func TestBuild_BalanceProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	codes := []string{"111", "112", "131", "152", "211", "331", "341", "411", "511", "632"}

	for round := 0; round < 50; round++ {
		var balances []ledger.AccountBalance
		total := types.Zero()

		for _, code := range codes[:len(codes)-1] {
			amount := types.NewMoney(float64(rng.Intn(1_000_000)) / 100)
			if rng.Intn(2) == 0 {
				balances = append(balances, ledger.AccountBalance{AccountCode: code, PeriodDebit: amount})
				total = total.Add(amount)
			} else {
				balances = append(balances, ledger.AccountBalance{AccountCode: code, PeriodCredit: amount})
				total = total.Sub(amount)
			}
		}

		// Closing entry forces the aggregate to net to zero.
		last := ledger.AccountBalance{AccountCode: codes[len(codes)-1]}
		if total.IsPositive() {
			last.PeriodCredit = total
		} else {
			last.PeriodDebit = total.Neg()
		}
		balances = append(balances, last)

		report := buildFor(t, balances, Filter{})
		assert.True(t, report.Check.Period.Balanced, "round %d: difference %s", round, report.Check.Period.Difference)
		assert.True(t, report.Check.Closing.Balanced, "round %d", round)
	}
}

func TestBuild_AbnormalBalanceFlagging(t *testing.T) {
	report := buildFor(t, []ledger.AccountBalance{
		// Debit-nature cash account driven onto the credit side.
		bal("111", "1000", "0", "0", "3000"),
		// Amphibious receivables with a credit balance: exempt.
		bal("131", "0", "0", "0", "2000"),
		bal("411", "0", "1000", "0", "0"),
		bal("511", "0", "0", "4000", "0"),
	}, Filter{})

	cash := report.RowByCode("111")
	require.NotNil(t, cash)
	assert.True(t, cash.IsAbnormal)
	assert.Contains(t, cash.AbnormalReason, "111")

	receivables := report.RowByCode("131")
	require.NotNil(t, receivables)
	assert.False(t, receivables.IsAbnormal, "amphibious accounts are never flagged")

	assert.Equal(t, 2, report.Check.AbnormalAccounts) // 111 and 511 (credit-nature, debit balance)
	assert.False(t, report.Check.CanGenerateReport)
}

// An abnormal balance must block the period even when the filter hides the
// offending row: the fitness verdict cannot depend on presentation.
func TestBuild_AbnormalSubAccountCountedWhenHidden(t *testing.T) {
	balances := []ledger.AccountBalance{
		bal("133", "0", "0", "1000", "0"),
		// Debit-nature VAT sub-account pushed onto the credit side.
		bal("1331", "0", "0", "0", "500"),
		bal("411", "0", "0", "0", "1000"),
	}

	hidden := buildFor(t, balances, Filter{})
	assert.Nil(t, hidden.RowByCode("1331"), "default filter hides sub-accounts")
	assert.Equal(t, 1, hidden.Check.AbnormalAccounts)
	assert.False(t, hidden.Check.CanGenerateReport)

	// Same books with sub-accounts shown must reach the same verdict.
	shown := buildFor(t, balances, Filter{IncludeSubAccounts: true})
	require.NotNil(t, shown.RowByCode("1331"))
	assert.Equal(t, hidden.Check.AbnormalAccounts, shown.Check.AbnormalAccounts)
	assert.Equal(t, hidden.Check.CanGenerateReport, shown.Check.CanGenerateReport)
}

func TestBuild_UnknownAccountSkippedWithWarning(t *testing.T) {
	report := buildFor(t, []ledger.AccountBalance{
		bal("111", "0", "0", "100", "0"),
		bal("999", "0", "0", "0", "100"),
	}, Filter{})

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "999")
	assert.Nil(t, report.RowByCode("999"))
}

func TestBuild_LevelOneCheckAvoidsDoubleCounting(t *testing.T) {
	report := buildFor(t, []ledger.AccountBalance{
		bal("111", "0", "0", "500", "0"),
		bal("1111", "0", "0", "500", "0"), // sub-account repeats the parent amount
		bal("411", "0", "0", "0", "500"),
	}, Filter{IncludeSubAccounts: true})

	// The check must total level-1 accounts only: 500 debit vs 500 credit.
	assert.Equal(t, "500", report.Check.Period.DebitTotal.String())
	assert.True(t, report.Check.Period.Balanced)
	require.Len(t, report.Rows, 3)
}

func TestBuild_SubAccountsExcludedByDefault(t *testing.T) {
	report := buildFor(t, []ledger.AccountBalance{
		bal("133", "0", "0", "100", "0"),
		bal("1331", "0", "0", "100", "0"),
	}, Filter{})

	assert.NotNil(t, report.RowByCode("133"))
	assert.Nil(t, report.RowByCode("1331"))
}

func TestBuild_SortsLexicographically(t *testing.T) {
	report := buildFor(t, []ledger.AccountBalance{
		bal("1331", "0", "0", "10", "0"),
		bal("112", "0", "0", "10", "0"),
		bal("111", "0", "0", "10", "0"),
	}, Filter{IncludeSubAccounts: true})

	got := make([]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		got = append(got, row.AccountCode)
	}
	assert.Equal(t, []string{"111", "112", "1331"}, got)
}

func TestBuild_Idempotent(t *testing.T) {
	balances := []ledger.AccountBalance{
		bal("111", "100", "0", "250.50", "30"),
		bal("411", "0", "100", "30", "250.50"),
	}
	svc := NewService(&stubProvider{balances: balances}, ledger.DefaultChart())
	filter := Filter{Descriptor: period.Descriptor{Period: period.MustParse("2025-03")}}

	first, err := svc.Build(context.Background(), filter)
	require.NoError(t, err)
	second, err := svc.Build(context.Background(), filter)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestBuild_ProviderFailureIsRetryable(t *testing.T) {
	svc := NewService(&stubProvider{err: errors.New("connection refused")}, ledger.DefaultChart())

	_, err := svc.Build(context.Background(), Filter{
		Descriptor: period.Descriptor{Period: period.MustParse("2025-03")},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsRetryable(err), "provider outage must surface as retryable: %v", err)
}

func TestBuild_InvalidPeriodRejected(t *testing.T) {
	svc := NewService(&stubProvider{}, ledger.DefaultChart())

	_, err := svc.Build(context.Background(), Filter{
		Descriptor: period.Descriptor{Period: period.Period{Type: period.TypeMonth, Year: 2025, Month: 13}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func ExampleService_Build() {
	provider := &stubProvider{balances: []ledger.AccountBalance{
		bal("111", "0", "0", "50000000", "0"),
		bal("411", "0", "0", "0", "50000000"),
	}}
	svc := NewService(provider, ledger.DefaultChart())

	report, _ := svc.Build(context.Background(), Filter{
		Descriptor: period.Descriptor{Period: period.MustParse("2025-03")},
	})
	fmt.Println(report.Check.CanGenerateReport)
	// Output: true
}
