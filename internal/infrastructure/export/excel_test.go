package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vibooks/internal/core/types"
	"vibooks/internal/domain/ledger"
	"vibooks/internal/domain/reports/balancesheet"
	"vibooks/internal/domain/reports/cashflow"
	"vibooks/internal/domain/reports/incomestatement"
	"vibooks/internal/domain/reports/pipeline"
	"vibooks/internal/domain/reports/trialbalance"
)

func sampleBundle() *pipeline.Bundle {
	return &pipeline.Bundle{
		TrialBalance: &trialbalance.Report{
			PeriodID: "2025-03",
			Rows: []trialbalance.Row{
				{AccountBalance: ledger.AccountBalance{
					AccountCode:  "111",
					AccountName:  "Cash on hand",
					Level:        1,
					ClosingDebit: types.NewMoney(50000),
				}},
			},
			Check: trialbalance.BalanceCheckResult{IsFullyBalanced: true},
		},
		IncomeStatement: &incomestatement.Report{
			PeriodID: "2025-03",
			Rows: []incomestatement.Row{
				{Code: "01", Name: "Revenue", Level: 1, Amount: types.NewMoney(100000)},
			},
		},
		BalanceSheet: &balancesheet.Report{
			PeriodID: "2025-03",
			Rows: []balancesheet.Row{
				{Code: "110", Name: "Cash and cash equivalents", Level: 2, Amount: types.NewMoney(50000)},
			},
			TotalAssets: types.NewMoney(50000),
			Validation:  balancesheet.Validation{IsBalanced: true},
		},
		CashFlow: &cashflow.Report{
			PeriodID: "2025-03",
			Rows: []cashflow.Row{
				{Code: "20", Name: "Net cash from operating activities", Level: 1, Amount: types.NewMoney(50000)},
			},
			CashEndingCalculated: types.NewMoney(50000),
			CashEndingActual:     types.NewMoney(50000),
			Validation:           cashflow.Validation{IsValid: true},
		},
	}
}

func TestWriteBundle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBundle(&buf, sampleBundle()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{sheetTrialBalance, sheetIncomeStatement, sheetBalanceSheet, sheetCashFlow},
		f.GetSheetList())

	code, err := f.GetCellValue(sheetTrialBalance, "A2")
	require.NoError(t, err)
	assert.Equal(t, "111", code)

	amount, err := f.GetCellValue(sheetCashFlow, "C2")
	require.NoError(t, err)
	assert.Equal(t, "50000", amount)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "statements-2025-03.xlsx", Filename("2025-03"))
}
