// Package pipeline runs the statement derivation chain end to end: trial
// balance, income statement, balance sheet, cash flow. Each statement is
// derived from the one trial balance built here, and prerequisite evaluation
// happens once instead of in every builder.
package pipeline

import (
	"context"
	"fmt"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/period"
	"vibooks/internal/domain/periodlock"
	"vibooks/internal/domain/reports/balancesheet"
	"vibooks/internal/domain/reports/cashflow"
	"vibooks/internal/domain/reports/incomestatement"
	"vibooks/internal/domain/reports/trialbalance"
	"vibooks/pkg/logger"
)

// Bundle is one period's complete statement set.
type Bundle struct {
	TrialBalance    *trialbalance.Report    `json:"trialBalance"`
	IncomeStatement *incomestatement.Report `json:"incomeStatement"`
	BalanceSheet    *balancesheet.Report    `json:"balanceSheet"`
	CashFlow        *cashflow.Report        `json:"cashFlow"`
}

// Service orchestrates the builders.
type Service struct {
	trialBalance *trialbalance.Service
	balanceSheet *balancesheet.Service
	locks        cashflow.LockChecker
}

func NewService(tb *trialbalance.Service, bs *balancesheet.Service, locks cashflow.LockChecker) *Service {
	return &Service{trialBalance: tb, balanceSheet: bs, locks: locks}
}

// Run builds the full bundle for a finalized period. All unmet
// prerequisites, including the missing lock, are reported in one error.
func (s *Service) Run(ctx context.Context, d period.Descriptor) (*Bundle, error) {
	return s.run(ctx, d, true)
}

// RunDraft builds the bundle without requiring the period lock, for
// previewing a period that is still being prepared.
func (s *Service) RunDraft(ctx context.Context, d period.Descriptor) (*Bundle, error) {
	return s.run(ctx, d, false)
}

func (s *Service) run(ctx context.Context, d period.Descriptor, requireLocked bool) (*Bundle, error) {
	tb, is, bs, reasons, err := s.statements(ctx, d)
	if err != nil {
		return nil, err
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

	bundle := &Bundle{
		TrialBalance:    tb,
		IncomeStatement: is,
		BalanceSheet:    bs,
		CashFlow:        cashflow.FromStatements(tb, is, bs),
	}

	logger.Debug(ctx, "statement bundle built",
		"period", d.Period.String(),
		"net_cash_flow", bundle.CashFlow.NetCashFlow.String())
	return bundle, nil
}

// EvaluateStatements backs the lock checklist: per-statement validity,
// evaluated without the lock requirement.
func (s *Service) EvaluateStatements(ctx context.Context, p period.Period) (periodlock.StatementChecks, error) {
	tb, is, bs, _, err := s.statements(ctx, period.Descriptor{Period: p})
	if err != nil {
		return periodlock.StatementChecks{}, err
	}

	checks := periodlock.StatementChecks{
		TrialBalanceBalanced: tb.Check.IsFullyBalanced,
	}
	if is != nil {
		checks.IncomeStatementValid = is.Valid
	}
	if bs != nil {
		checks.BalanceSheetValid = bs.Validation.CanSubmit
		if checks.BalanceSheetValid {
			checks.CashFlowValid = cashflow.FromStatements(tb, is, bs).Validation.IsValid
		}
	}
	return checks, nil
}

// statements builds the trial balance once and derives income statement and
// balance sheet from it, accumulating every blocking reason instead of
// stopping at the first. Hard errors (provider outages) return immediately.
func (s *Service) statements(ctx context.Context, d period.Descriptor) (*trialbalance.Report, *incomestatement.Report, *balancesheet.Report, []string, error) {
	tb, err := s.trialBalance.Build(ctx, trialbalance.Filter{
		Descriptor:         d,
		IncludeZeroBalance: true,
		IncludeSubAccounts: true,
	})
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var reasons []string
	if !tb.Check.CanGenerateReport {
		if !tb.Check.IsFullyBalanced {
			reasons = append(reasons, "trial balance is not balanced")
		}
		if tb.Check.AbnormalAccounts > 0 {
			reasons = append(reasons, fmt.Sprintf(
				"%d account(s) carry balances on the wrong side", tb.Check.AbnormalAccounts))
		}
		return tb, nil, nil, reasons, nil
	}

	is := incomestatement.FromTrialBalance(tb)
	if !is.Valid {
		reasons = append(reasons, "income statement is not valid")
	}

	bs, err := s.balanceSheet.FromTrialBalance(ctx, tb)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if !bs.Validation.CanSubmit {
		reasons = append(reasons, fmt.Sprintf(
			"balance sheet cannot be submitted: %s", bs.Validation.Errors[0]))
	}
	return tb, is, bs, reasons, nil
}
