package cashflow

import (
	"context"
	"fmt"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
	"vibooks/internal/domain/reports/balancesheet"
	"vibooks/internal/domain/reports/incomestatement"
	"vibooks/internal/domain/reports/trialbalance"
	"vibooks/pkg/logger"
)

// LockChecker reports whether a period's books are locked. The cash flow
// statement is the last stage of the pipeline and is only final once the
// period can no longer change underneath it.
type LockChecker interface {
	IsLocked(ctx context.Context, p period.Period) (bool, error)
}

// LockCheckerFunc adapts a function to LockChecker. The lock service itself
// depends on the statement builders for its checklist, so wiring closes the
// loop with a late-bound function.
type LockCheckerFunc func(ctx context.Context, p period.Period) (bool, error)

func (f LockCheckerFunc) IsLocked(ctx context.Context, p period.Period) (bool, error) {
	return f(ctx, p)
}

// Service builds cash flow statements from the upstream statements.
type Service struct {
	trialBalance *trialbalance.Service
	balanceSheet *balancesheet.Service
	locks        LockChecker
}

func NewService(tb *trialbalance.Service, bs *balancesheet.Service, locks LockChecker) *Service {
	return &Service{trialBalance: tb, balanceSheet: bs, locks: locks}
}

// Build produces the final cash flow statement. Every prerequisite is
// evaluated and all unmet ones are reported together: trial balance
// balanced, balance sheet submittable, income statement valid, period
// locked.
func (s *Service) Build(ctx context.Context, d period.Descriptor) (*Report, error) {
	return s.build(ctx, d, true)
}

// BuildDraft produces the statement without requiring the period to be
// locked. The lock checklist uses it: cash-flow-valid is itself a condition
// for locking, so the pre-lock evaluation must not demand the lock.
func (s *Service) BuildDraft(ctx context.Context, d period.Descriptor) (*Report, error) {
	return s.build(ctx, d, false)
}

func (s *Service) build(ctx context.Context, d period.Descriptor, requireLocked bool) (*Report, error) {
	var reasons []string

	// Sub-accounts are kept: tax payments are read off 3334 directly.
	tb, err := s.trialBalance.Build(ctx, trialbalance.Filter{
		Descriptor:         d,
		IncludeZeroBalance: true,
		IncludeSubAccounts: true,
	})
	if err != nil {
		return nil, err
	}

	var bs *balancesheet.Report
	var is *incomestatement.Report
	if tb.Check.CanGenerateReport {
		is = incomestatement.FromTrialBalance(tb)
		if !is.Valid {
			reasons = append(reasons, "income statement is not valid")
		}
		bs, err = s.balanceSheet.FromTrialBalance(ctx, tb)
		if err != nil {
			return nil, err
		}
		if !bs.Validation.CanSubmit {
			reasons = append(reasons, fmt.Sprintf(
				"balance sheet cannot be submitted: %s", bs.Validation.Errors[0]))
		}
	} else {
		if !tb.Check.IsFullyBalanced {
			reasons = append(reasons, "trial balance is not balanced")
		}
		if tb.Check.AbnormalAccounts > 0 {
			reasons = append(reasons, fmt.Sprintf(
				"%d account(s) carry balances on the wrong side", tb.Check.AbnormalAccounts))
		}
	}

	if requireLocked {
		locked, err := s.locks.IsLocked(ctx, d.Period)
		if err != nil {
			return nil, err
		}
		if !locked {
			reasons = append(reasons, fmt.Sprintf("period %s is not locked", d.Period.String()))
		}
	}

	if len(reasons) > 0 {
		return nil, apperror.NewPrerequisitesNotMet(reasons)
	}

	report := assemble(tb, is, bs)

	if !report.Validation.IsValid {
		logger.Warn(ctx, "cash flow statement does not reconcile",
			"period", report.PeriodID,
			"difference", report.Validation.Difference.String())
	}
	return report, nil
}

// FromStatements derives the statement from already built upstream reports.
// Prerequisite evaluation is the caller's concern; the pipeline orchestrator
// uses this to build every statement off one trial balance.
func FromStatements(tb *trialbalance.Report, is *incomestatement.Report, bs *balancesheet.Report) *Report {
	return assemble(tb, is, bs)
}

// assemble derives the statement lines from ledger activity.
//
// The derivation assumes the period's books are pre-closing: profit and loss
// accounts still carry their activity and have not been swept into retained
// earnings.
func assemble(tb *trialbalance.Report, is *incomestatement.Report, bs *balancesheet.Report) *Report {
	debitAct := func(codes ...string) types.Money {
		total := types.Zero()
		for _, code := range codes {
			if row := tb.RowByCode(code); row != nil {
				total = total.Add(row.PeriodDebit.Sub(row.PeriodCredit))
			}
		}
		return total
	}
	creditAct := func(codes ...string) types.Money {
		return debitAct(codes...).Neg()
	}
	// Gross debit turnover, ignoring credits. Needed where the cash leg
	// of an account must be read without the accrual leg netting it out.
	grossDebit := func(code string) types.Money {
		if row := tb.RowByCode(code); row != nil {
			return row.PeriodDebit
		}
		return types.Zero()
	}
	// Signed balance movement over the period, debit-positive.
	netDelta := func(codes ...string) types.Money {
		total := types.Zero()
		for _, code := range codes {
			if row := tb.RowByCode(code); row != nil {
				total = total.Add(row.NetClosing().Sub(row.NetOpening()))
			}
		}
		return total
	}

	// --- Operating: start from accrual profit the indirect way.
	preTaxProfit := is.PreTaxProfit
	depreciation := creditAct("214")
	provisions := creditAct("229").Add(creditAct("352"))
	interestExpense := debitAct("635")
	// Non-operating gains and losses move to investing with the proceeds.
	disposalLossNet := debitAct("811").Sub(creditAct("711"))
	interestIncome := creditAct("515")

	profitBeforeWC := preTaxProfit.
		Add(depreciation).
		Add(provisions).
		Add(interestExpense).
		Add(disposalLossNet).
		Sub(interestIncome)

	// Working-capital deltas: an asset increase ties cash up, a liability
	// increase frees it.
	receivablesDelta := netDelta("131", "133", "136", "138", "141")
	inventoryDelta := netDelta("152", "153", "154", "155", "156", "157")
	prepaidDelta := netDelta("242")
	// Tax payments are carved out of 333 and shown on their own line, so
	// the payables delta excludes the income tax sub-account's movement.
	payablesDelta := netDelta("331", "334", "335", "336", "338", "353").
		Add(netDelta("333")).
		Sub(netDelta("3334")).
		Neg() // credit-positive orientation

	interestPaid := interestExpense.Neg()
	// Tax paid is the cash remitted against 3334 in the period, so only
	// the debit side counts. Netting against accrual credits would turn
	// an under-paid quarter into a fictitious inflow.
	taxPaid := grossDebit("3334").Neg()

	operating := profitBeforeWC.
		Sub(receivablesDelta).
		Sub(inventoryDelta).
		Sub(prepaidDelta).
		Add(payablesDelta).
		Add(interestPaid).
		Add(taxPaid)

	// --- Investing.
	capex := debitAct("211", "217", "241").Neg()
	disposalProceeds := creditAct("211", "217", "241").
		Sub(debitAct("214")).
		Sub(disposalLossNet)
	investmentsMade := debitAct("121", "128", "228").Neg()
	investmentsRecovered := creditAct("121", "128", "228")

	investing := capex.
		Add(disposalProceeds).
		Add(investmentsMade).
		Add(investmentsRecovered).
		Add(interestIncome)

	// --- Financing.
	contributions := creditAct("411")
	capitalReturned := debitAct("411").Neg()
	borrowed := creditAct("341")
	repaid := debitAct("341").Neg()
	// Profit appropriations into equity funds move cash only when the fund
	// is spent, so fund build-up offsets the retained-earnings debit.
	dividendsPaid := debitAct("421").Neg().Add(creditAct("418"))

	financing := contributions.
		Add(capitalReturned).
		Add(borrowed).
		Add(repaid).
		Add(dividendsPaid)

	netFlow := operating.Add(investing).Add(financing)

	cashBeginning := types.Zero()
	for _, code := range []string{"111", "112"} {
		if row := tb.RowByCode(code); row != nil {
			cashBeginning = cashBeginning.Add(row.NetOpening())
		}
	}
	// Ending cash is sourced independently from the balance sheet so the
	// reconciliation is a real cross-check, not a tautology.
	cashActual := types.Zero()
	if cashLine := bs.RowByCode("110"); cashLine != nil {
		cashActual = cashLine.Amount
	}
	fxEffect := creditAct("413")
	cashCalculated := cashBeginning.Add(netFlow).Add(fxEffect)

	report := &Report{
		Period:               tb.Period,
		PeriodID:             tb.PeriodID,
		FromDate:             tb.FromDate,
		ToDate:               tb.ToDate,
		Operating:            operating,
		Investing:            investing,
		Financing:            financing,
		NetCashFlow:          netFlow,
		CashBeginning:        cashBeginning,
		ExchangeRateEffect:   fxEffect,
		CashEndingCalculated: cashCalculated,
		CashEndingActual:     cashActual,
	}

	report.Rows = []Row{
		{Code: "01", Section: SectionOperating, Level: 1, Name: "Profit before tax", Amount: preTaxProfit,
			Formula: "income statement line 50"},
		{Code: "02", Section: SectionOperating, Level: 2, Name: "Depreciation and amortization", Amount: depreciation,
			AccountMapping: []string{"214"}, Formula: "credit activity of 214"},
		{Code: "03", Section: SectionOperating, Level: 2, Name: "Provisions", Amount: provisions,
			AccountMapping: []string{"229", "352"}, Formula: "net credit activity of 229, 352"},
		{Code: "05", Section: SectionOperating, Level: 2, Name: "Interest expense", Amount: interestExpense,
			AccountMapping: []string{"635"}, Formula: "debit activity of 635"},
		{Code: "06", Section: SectionOperating, Level: 2, Name: "Loss (gain) on disposals and other items", Amount: disposalLossNet,
			AccountMapping: []string{"711", "811"}, Formula: "debit activity of 811 less credit activity of 711"},
		{Code: "07", Section: SectionOperating, Level: 2, Name: "Interest and dividend income", Amount: interestIncome.Neg(),
			AccountMapping: []string{"515"}, IsNegative: true, Formula: "credit activity of 515, moved to investing"},
		{Code: "08", Section: SectionOperating, Level: 1, Name: "Operating profit before working capital changes", Amount: profitBeforeWC,
			IsTotal: true},
		{Code: "09", Section: SectionOperating, Level: 2, Name: "Change in receivables", Amount: receivablesDelta.Neg(),
			AccountMapping: []string{"131", "133", "136", "138", "141"}, Formula: "opening-to-closing movement, increase is an outflow"},
		{Code: "10", Section: SectionOperating, Level: 2, Name: "Change in inventories", Amount: inventoryDelta.Neg(),
			AccountMapping: []string{"152", "153", "154", "155", "156", "157"}, Formula: "opening-to-closing movement, increase is an outflow"},
		{Code: "11", Section: SectionOperating, Level: 2, Name: "Change in payables", Amount: payablesDelta,
			AccountMapping: []string{"331", "333", "334", "335", "336", "338", "353"}, Formula: "opening-to-closing movement excluding income tax payable, increase is an inflow"},
		{Code: "12", Section: SectionOperating, Level: 2, Name: "Change in prepaid expenses", Amount: prepaidDelta.Neg(),
			AccountMapping: []string{"242"}, Formula: "opening-to-closing movement, increase is an outflow"},
		{Code: "14", Section: SectionOperating, Level: 2, Name: "Interest paid", Amount: interestPaid,
			AccountMapping: []string{"635"}, IsNegative: true},
		{Code: "15", Section: SectionOperating, Level: 2, Name: "Corporate income tax paid", Amount: taxPaid,
			AccountMapping: []string{"3334"}, IsNegative: true, Formula: "period debits of 3334, accrual credits excluded"},
		{Code: "20", Section: SectionOperating, Level: 0, Name: "Net cash flow from operating activities", Amount: operating,
			IsTotal: true},

		{Code: "21", Section: SectionInvesting, Level: 2, Name: "Purchases of fixed assets and construction", Amount: capex,
			AccountMapping: []string{"211", "217", "241"}, IsNegative: true},
		{Code: "22", Section: SectionInvesting, Level: 2, Name: "Proceeds from disposal of fixed assets", Amount: disposalProceeds,
			AccountMapping: []string{"211", "214", "217", "241"}, Formula: "carrying amount disposed adjusted by disposal result"},
		{Code: "23", Section: SectionInvesting, Level: 2, Name: "Investments in other entities and instruments", Amount: investmentsMade,
			AccountMapping: []string{"121", "128", "228"}, IsNegative: true},
		{Code: "24", Section: SectionInvesting, Level: 2, Name: "Recovery of investments", Amount: investmentsRecovered,
			AccountMapping: []string{"121", "128", "228"}},
		{Code: "27", Section: SectionInvesting, Level: 2, Name: "Interest and dividends received", Amount: interestIncome,
			AccountMapping: []string{"515"}},
		{Code: "30", Section: SectionInvesting, Level: 0, Name: "Net cash flow from investing activities", Amount: investing,
			IsTotal: true},

		{Code: "31", Section: SectionFinancing, Level: 2, Name: "Capital contributions received", Amount: contributions,
			AccountMapping: []string{"411"}},
		{Code: "32", Section: SectionFinancing, Level: 2, Name: "Capital returned to owners", Amount: capitalReturned,
			AccountMapping: []string{"411"}, IsNegative: true},
		{Code: "33", Section: SectionFinancing, Level: 2, Name: "Proceeds from borrowings", Amount: borrowed,
			AccountMapping: []string{"341"}},
		{Code: "34", Section: SectionFinancing, Level: 2, Name: "Repayment of borrowings", Amount: repaid,
			AccountMapping: []string{"341"}, IsNegative: true},
		{Code: "36", Section: SectionFinancing, Level: 2, Name: "Dividends and profit distributions paid", Amount: dividendsPaid,
			AccountMapping: []string{"418", "421"}, IsNegative: true},
		{Code: "40", Section: SectionFinancing, Level: 0, Name: "Net cash flow from financing activities", Amount: financing,
			IsTotal: true},

		{Code: "50", Section: SectionSummary, Level: 0, Name: "Net increase (decrease) in cash", Amount: netFlow, IsTotal: true},
		{Code: "60", Section: SectionSummary, Level: 1, Name: "Cash and cash equivalents at beginning of period", Amount: cashBeginning,
			AccountMapping: []string{"111", "112"}},
		{Code: "61", Section: SectionSummary, Level: 2, Name: "Effect of exchange rate changes", Amount: fxEffect,
			AccountMapping: []string{"413"}},
		{Code: "70", Section: SectionSummary, Level: 0, Name: "Cash and cash equivalents at end of period", Amount: cashCalculated,
			IsTotal: true, Formula: "60 + 50 + 61"},
	}

	report.Validation = validate(report)
	report.Explanations = explain(report, is)
	return report
}

func validate(r *Report) Validation {
	v := Validation{
		Difference: r.CashEndingCalculated.Sub(r.CashEndingActual).Abs(),
	}
	switch {
	case v.Difference.GreaterThan(types.CashFlowTolerance):
		v.Errors = append(v.Errors, fmt.Sprintf(
			"calculated ending cash %s does not match ledger cash %s (difference %s)",
			r.CashEndingCalculated.String(), r.CashEndingActual.String(), v.Difference.String()))
	case v.Difference.GreaterThan(types.BalanceTolerance):
		v.Warnings = append(v.Warnings, fmt.Sprintf(
			"calculated ending cash differs from ledger cash by %s", v.Difference.String()))
	}
	v.IsValid = len(v.Errors) == 0
	v.CanSubmit = v.IsValid
	return v
}

// explain narrates the gap between accrual profit and operating cash by
// pointing at the working-capital lines that absorbed or released cash.
// Advisory only.
func explain(r *Report, is *incomestatement.Report) []string {
	profit := is.NetProfit
	var out []string

	switch {
	case profit.IsPositive() && r.Operating.IsNegative():
		out = append(out, fmt.Sprintf(
			"net profit is %s but operating cash flow is %s: profit was earned on paper while cash went out",
			profit.String(), r.Operating.String()))
		for _, code := range []string{"09", "10", "12"} {
			if row := r.RowByCode(code); row != nil && row.Amount.IsNegative() {
				out = append(out, fmt.Sprintf("%s absorbed %s of cash",
					lowerFirst(row.Name), row.Amount.Neg().String()))
			}
		}
	case profit.IsNegative() && r.Operating.IsPositive():
		out = append(out, fmt.Sprintf(
			"net loss is %s but operating cash flow is %s: cash came in despite the accounting loss",
			profit.Neg().String(), r.Operating.String()))
		for _, code := range []string{"09", "10", "11", "12"} {
			if row := r.RowByCode(code); row != nil && row.Amount.IsPositive() {
				out = append(out, fmt.Sprintf("%s released %s of cash",
					lowerFirst(row.Name), row.Amount.String()))
			}
		}
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}
