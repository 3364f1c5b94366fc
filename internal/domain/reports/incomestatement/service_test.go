package incomestatement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func activity(code, debit, credit string) ledger.AccountBalance {
	return ledger.AccountBalance{
		AccountCode:  code,
		PeriodDebit:  types.MustMoney(debit),
		PeriodCredit: types.MustMoney(credit),
	}
}

func buildFor(t *testing.T, balances []ledger.AccountBalance) *Report {
	t.Helper()
	tb := trialbalance.NewService(&stubProvider{balances: balances}, ledger.DefaultChart())
	svc := NewService(tb)
	report, err := svc.Build(context.Background(), period.Descriptor{Period: period.MustParse("2025-03")})
	require.NoError(t, err)
	return report
}

// A month of trade: a cash sale with VAT, cost of the goods sold, and the
// income tax accrual. Every journal leg balances.
func tradingMonth() []ledger.AccountBalance {
	return []ledger.AccountBalance{
		activity("111", "110000", "0"), // cash received incl. VAT
		activity("511", "0", "100000"), // revenue
		activity("333", "0", "18000"),  // output VAT plus income tax payable
		activity("632", "60000", "0"),  // cost of goods sold
		activity("156", "0", "60000"),  // goods leaving the warehouse
		activity("821", "8000", "0"),   // income tax expense
	}
}

func TestBuild_TradingMonth(t *testing.T) {
	report := buildFor(t, tradingMonth())

	assert.Equal(t, "100000", report.Revenue.String())
	assert.Equal(t, "100000", report.NetRevenue.String())
	assert.Equal(t, "40000", report.GrossProfit.String())
	assert.Equal(t, "40000", report.PreTaxProfit.String())
	assert.Equal(t, "8000", report.TaxExpense.String())
	assert.Equal(t, "32000", report.NetProfit.String())
	assert.True(t, report.Valid)
}

func TestBuild_RevenueDeductions(t *testing.T) {
	balances := append(tradingMonth(),
		// sales returns: deduction debit, customer refund payable
		activity("521", "5000", "0"),
		activity("131", "0", "5000"),
	)
	report := buildFor(t, balances)

	assert.Equal(t, "100000", report.Revenue.String())
	assert.Equal(t, "95000", report.NetRevenue.String())
	assert.Equal(t, "35000", report.GrossProfit.String())

	row := report.RowByCode("02")
	require.NotNil(t, row)
	assert.Equal(t, "5000", row.Amount.String())
}

func TestBuild_OtherAndFinanceActivity(t *testing.T) {
	balances := append(tradingMonth(),
		activity("112", "1500", "0"),
		activity("515", "0", "1500"), // deposit interest
		activity("635", "2500", "0"), // loan interest
		activity("335", "0", "2500"),
		activity("811", "700", "0"), // contract penalty
		activity("338", "0", "700"),
	)
	report := buildFor(t, balances)

	// 40,000 gross + 1,500 - 2,500 = 39,000 operating; -700 other.
	assert.Equal(t, "39000", report.OperatingProfit.String())
	assert.Equal(t, "38300", report.PreTaxProfit.String())
	assert.Equal(t, "30300", report.NetProfit.String())

	other := report.RowByCode("40")
	require.NotNil(t, other)
	assert.Equal(t, "-700", other.Amount.String())
}

func TestBuild_StatementLineOrder(t *testing.T) {
	report := buildFor(t, tradingMonth())

	want := []string{"01", "02", "10", "11", "20", "21", "22", "25", "30", "31", "32", "40", "50", "51", "60"}
	require.Len(t, report.Rows, len(want))
	for i, code := range want {
		assert.Equal(t, code, report.Rows[i].Code)
	}
}

// An unbalanced book still yields a statement, marked invalid.
func TestFromTrialBalance_InvalidWhenUnbalanced(t *testing.T) {
	tb := trialbalance.NewService(&stubProvider{balances: []ledger.AccountBalance{
		activity("511", "0", "100000"),
	}}, ledger.DefaultChart())
	tbReport, err := tb.Build(context.Background(), trialbalance.Filter{
		Descriptor:         period.Descriptor{Period: period.MustParse("2025-03")},
		IncludeZeroBalance: true,
	})
	require.NoError(t, err)
	require.False(t, tbReport.Check.IsFullyBalanced)

	report := FromTrialBalance(tbReport)
	assert.False(t, report.Valid)
	assert.Equal(t, "100000", report.Revenue.String())
}
