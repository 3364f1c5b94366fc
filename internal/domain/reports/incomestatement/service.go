package incomestatement

import (
	"context"

	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
	"vibooks/internal/domain/reports/trialbalance"
	"vibooks/pkg/logger"
)

// Service builds income statements on top of the trial balance.
type Service struct {
	trialBalance *trialbalance.Service
}

// NewService creates a new income statement service.
func NewService(trialBalance *trialbalance.Service) *Service {
	return &Service{trialBalance: trialBalance}
}

// Build derives the income statement for the period.
func (s *Service) Build(ctx context.Context, d period.Descriptor) (*Report, error) {
	tb, err := s.trialBalance.Build(ctx, trialbalance.Filter{
		Descriptor:         d,
		IncludeZeroBalance: true,
	})
	if err != nil {
		return nil, err
	}

	report := FromTrialBalance(tb)

	logger.Debug(ctx, "income statement built",
		"period", report.PeriodID,
		"net_profit", report.NetProfit.String(),
		"valid", report.Valid,
	)

	return report, nil
}

// FromTrialBalance assembles the statement from an already-built trial
// balance, without refetching balances. Used by the pipeline orchestrator.
func FromTrialBalance(tb *trialbalance.Report) *Report {
	// Activity of a P&L account within the period. Revenue accumulates on
	// the credit side, costs and expenses on the debit side.
	creditActivity := func(codes ...string) types.Money {
		total := types.Zero()
		for _, code := range codes {
			if row := tb.RowByCode(code); row != nil {
				total = total.Add(row.PeriodCredit.Sub(row.PeriodDebit))
			}
		}
		return total
	}
	debitActivity := func(codes ...string) types.Money {
		total := types.Zero()
		for _, code := range codes {
			if row := tb.RowByCode(code); row != nil {
				total = total.Add(row.PeriodDebit.Sub(row.PeriodCredit))
			}
		}
		return total
	}

	revenue := creditActivity("511")
	deductions := debitActivity("521")
	netRevenue := revenue.Sub(deductions)
	cogs := debitActivity("632")
	grossProfit := netRevenue.Sub(cogs)
	financeIncome := creditActivity("515")
	financeExpense := debitActivity("635")
	adminExpense := debitActivity("642")
	operatingProfit := grossProfit.Add(financeIncome).Sub(financeExpense).Sub(adminExpense)
	otherIncome := creditActivity("711")
	otherExpense := debitActivity("811")
	otherProfit := otherIncome.Sub(otherExpense)
	preTaxProfit := operatingProfit.Add(otherProfit)
	taxExpense := debitActivity("821")
	netProfit := preTaxProfit.Sub(taxExpense)

	report := &Report{
		Period:          tb.Period,
		PeriodID:        tb.PeriodID,
		FromDate:        tb.FromDate,
		ToDate:          tb.ToDate,
		Revenue:         revenue,
		NetRevenue:      netRevenue,
		GrossProfit:     grossProfit,
		OperatingProfit: operatingProfit,
		PreTaxProfit:    preTaxProfit,
		TaxExpense:      taxExpense,
		NetProfit:       netProfit,
		Valid:           tb.Check.IsFullyBalanced,
	}

	report.Rows = []Row{
		{Code: "01", Name: "Revenue from sales of goods and services", Level: 1, Amount: revenue, AccountMapping: []string{"511"}},
		{Code: "02", Name: "Revenue deductions", Level: 1, Amount: deductions, AccountMapping: []string{"521"}},
		{Code: "10", Name: "Net revenue", Level: 1, Amount: netRevenue},
		{Code: "11", Name: "Cost of goods sold", Level: 1, Amount: cogs, AccountMapping: []string{"632"}},
		{Code: "20", Name: "Gross profit", Level: 1, Amount: grossProfit},
		{Code: "21", Name: "Finance income", Level: 1, Amount: financeIncome, AccountMapping: []string{"515"}},
		{Code: "22", Name: "Finance expenses", Level: 1, Amount: financeExpense, AccountMapping: []string{"635"}},
		{Code: "25", Name: "General administration expenses", Level: 1, Amount: adminExpense, AccountMapping: []string{"642"}},
		{Code: "30", Name: "Operating profit", Level: 1, Amount: operatingProfit},
		{Code: "31", Name: "Other income", Level: 1, Amount: otherIncome, AccountMapping: []string{"711"}},
		{Code: "32", Name: "Other expenses", Level: 1, Amount: otherExpense, AccountMapping: []string{"811"}},
		{Code: "40", Name: "Other profit", Level: 1, Amount: otherProfit},
		{Code: "50", Name: "Profit before tax", Level: 0, Amount: preTaxProfit},
		{Code: "51", Name: "Corporate income tax expense", Level: 1, Amount: taxExpense, AccountMapping: []string{"821"}},
		{Code: "60", Name: "Profit after tax", Level: 0, Amount: netProfit},
	}

	return report
}
