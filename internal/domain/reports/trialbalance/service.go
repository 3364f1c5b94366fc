package trialbalance

import (
	"context"
	"fmt"
	"sort"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/types"
	"vibooks/internal/domain/ledger"
	"vibooks/pkg/logger"
)

// Service builds trial balance reports.
type Service struct {
	provider ledger.BalanceProvider
	chart    *ledger.Chart
}

// NewService creates a new trial balance service.
func NewService(provider ledger.BalanceProvider, chart *ledger.Chart) *Service {
	return &Service{provider: provider, chart: chart}
}

// Build aggregates account balances for the period, applies the abnormal
// balance rule and computes the three-way balance check.
func (s *Service) Build(ctx context.Context, filter Filter) (*Report, error) {
	if err := filter.Descriptor.Period.Validate(); err != nil {
		return nil, apperror.NewValidation(err.Error())
	}

	balances, err := s.provider.GetBalances(ctx, filter.Descriptor)
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewProviderUnavailable(fmt.Errorf("get balances: %w", err))
	}

	from, to := filter.Descriptor.Range()
	report := &Report{
		Period:   filter.Descriptor.Period,
		PeriodID: filter.Descriptor.Period.String(),
		FromDate: from,
		ToDate:   to,
	}

	// Enrich from the chart, drop unknown codes with a warning and compute
	// netted closings. levelOne keeps every level-1 balance for the check
	// regardless of output filters.
	var levelOne []ledger.AccountBalance
	abnormalCount := 0

	for _, bal := range balances {
		tpl, known := s.chart.Lookup(bal.AccountCode)
		if !known {
			warning := fmt.Sprintf("unknown account code %s: row skipped", bal.AccountCode)
			report.Warnings = append(report.Warnings, warning)
			logger.Warn(ctx, "trial balance row skipped",
				"account_code", bal.AccountCode,
				"period", report.PeriodID,
			)
			continue
		}

		bal.AccountName = tpl.Name
		bal.Level = tpl.Level
		bal.ParentCode = tpl.ParentCode
		bal.Nature = tpl.Nature
		bal.AccountType = tpl.Type
		bal.ComputeClosing()

		if tpl.Level == 1 {
			levelOne = append(levelOne, bal)
		}

		// Abnormality is judged on every chart-known balance before any
		// presentation filter; hiding a sub-account must not change
		// whether the period is fit to report on.
		isAbnormal, abnormalReason := abnormal(bal)
		if isAbnormal {
			abnormalCount++
		}

		if !filter.IncludeZeroBalance && bal.IsZero() {
			continue
		}
		if !filter.IncludeSubAccounts && tpl.Level > 1 {
			continue
		}
		if filter.AccountLevel > 0 && tpl.Level > filter.AccountLevel {
			continue
		}

		row := Row{AccountBalance: bal}
		row.IsAbnormal = isAbnormal
		row.AbnormalReason = abnormalReason
		report.Rows = append(report.Rows, row)
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		return ledger.CodeLess(report.Rows[i].AccountCode, report.Rows[j].AccountCode)
	})

	report.Check = balanceCheck(levelOne, abnormalCount)

	logger.Debug(ctx, "trial balance built",
		"period", report.PeriodID,
		"rows", len(report.Rows),
		"balanced", report.Check.IsFullyBalanced,
		"abnormal", abnormalCount,
	)

	return report, nil
}

// abnormal applies the abnormal-nature rule: a debit-nature account must not
// close on the credit side and vice versa. Amphibious accounts are exempt.
func abnormal(bal ledger.AccountBalance) (bool, string) {
	net := bal.NetClosing()
	switch bal.Nature {
	case ledger.NatureDebit:
		if net.IsNegative() {
			return true, fmt.Sprintf(
				"debit-nature account %s closes with net credit balance %s",
				bal.AccountCode, net.Neg().String(),
			)
		}
	case ledger.NatureCredit:
		if net.IsPositive() {
			return true, fmt.Sprintf(
				"credit-nature account %s closes with net debit balance %s",
				bal.AccountCode, net.String(),
			)
		}
	}
	return false, ""
}

// balanceCheck totals opening, period and closing over level-1 accounts.
func balanceCheck(levelOne []ledger.AccountBalance, abnormalCount int) BalanceCheckResult {
	var openingDebit, openingCredit, periodDebit, periodCredit, closingDebit, closingCredit types.Money
	openingDebit, openingCredit = types.Zero(), types.Zero()
	periodDebit, periodCredit = types.Zero(), types.Zero()
	closingDebit, closingCredit = types.Zero(), types.Zero()

	for _, bal := range levelOne {
		openingDebit = openingDebit.Add(bal.OpeningDebit)
		openingCredit = openingCredit.Add(bal.OpeningCredit)
		periodDebit = periodDebit.Add(bal.PeriodDebit)
		periodCredit = periodCredit.Add(bal.PeriodCredit)
		closingDebit = closingDebit.Add(bal.ClosingDebit)
		closingCredit = closingCredit.Add(bal.ClosingCredit)
	}

	result := BalanceCheckResult{
		Opening:          newCheck(openingDebit, openingCredit),
		Period:           newCheck(periodDebit, periodCredit),
		Closing:          newCheck(closingDebit, closingCredit),
		AbnormalAccounts: abnormalCount,
	}
	result.IsFullyBalanced = result.Opening.Balanced && result.Period.Balanced && result.Closing.Balanced
	result.CanGenerateReport = result.IsFullyBalanced && abnormalCount == 0
	return result
}

func newCheck(debit, credit types.Money) BalanceCheck {
	diff := debit.Sub(credit)
	return BalanceCheck{
		DebitTotal:  debit,
		CreditTotal: credit,
		Difference:  diff,
		Balanced:    diff.Abs().LessThanOrEqual(types.BalanceTolerance),
	}
}
