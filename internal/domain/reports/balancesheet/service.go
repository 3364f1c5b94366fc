package balancesheet

import (
	"context"
	"fmt"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
	"vibooks/internal/domain/reports/trialbalance"
	"vibooks/pkg/logger"
)

// Service builds balance sheets from trial balance closings.
type Service struct {
	trialBalance *trialbalance.Service
}

func NewService(tb *trialbalance.Service) *Service {
	return &Service{trialBalance: tb}
}

// Build produces the balance sheet for the period. The underlying trial
// balance must pass its own check before a statement is rendered; all unmet
// prerequisites are reported together.
func (s *Service) Build(ctx context.Context, d period.Descriptor) (*Report, error) {
	tb, err := s.trialBalance.Build(ctx, trialbalance.Filter{
		Descriptor:         d,
		IncludeZeroBalance: true,
	})
	if err != nil {
		return nil, err
	}
	return s.FromTrialBalance(ctx, tb)
}

// FromTrialBalance renders the statement from an already built trial
// balance, so the pipeline can share one trial balance across statements.
func (s *Service) FromTrialBalance(ctx context.Context, tb *trialbalance.Report) (*Report, error) {
	if reasons := prerequisites(tb); len(reasons) > 0 {
		return nil, apperror.NewPrerequisitesNotMet(reasons)
	}

	rep := &Report{
		Period:   tb.Period,
		PeriodID: tb.PeriodID,
		FromDate: tb.FromDate,
		ToDate:   tb.ToDate,
	}

	amounts := resolveAmounts(tb)
	for _, line := range statutoryTemplate {
		rep.Rows = append(rep.Rows, Row{
			Code:     line.Code,
			Name:     line.Name,
			Level:    line.Level,
			Section:  line.Section,
			Amount:   amounts[line.Code],
			IsTotal:  line.IsTotal,
			Mappings: mappingLabels(line.Mappings),
		})
	}

	rep.TotalAssets = amounts["270"]
	rep.TotalLiabilities = amounts["300"]
	rep.TotalEquity = amounts["400"]
	rep.Validation = validate(rep, amounts["440"])

	if !rep.Validation.IsBalanced {
		logger.Warn(ctx, "balance sheet does not balance",
			"period", rep.PeriodID,
			"difference", rep.Validation.Difference.String())
	}
	return rep, nil
}

// prerequisites lists every reason the trial balance cannot back a
// statement. Reasons are accumulated so the accountant sees the whole list
// at once instead of fixing one and rediscovering the next.
func prerequisites(tb *trialbalance.Report) []string {
	var reasons []string
	if !tb.Check.Opening.Balanced {
		reasons = append(reasons, fmt.Sprintf(
			"trial balance opening is unbalanced by %s", tb.Check.Opening.Difference.String()))
	}
	if !tb.Check.Period.Balanced {
		reasons = append(reasons, fmt.Sprintf(
			"trial balance period activity is unbalanced by %s", tb.Check.Period.Difference.String()))
	}
	if !tb.Check.Closing.Balanced {
		reasons = append(reasons, fmt.Sprintf(
			"trial balance closing is unbalanced by %s", tb.Check.Closing.Difference.String()))
	}
	if tb.Check.AbnormalAccounts > 0 {
		reasons = append(reasons, fmt.Sprintf(
			"%d account(s) carry balances on the wrong side", tb.Check.AbnormalAccounts))
	}
	return reasons
}

// resolveAmounts evaluates every template line. Group lines sum child lines
// declared later in presentation order, so amounts are resolved recursively
// with memoization rather than in a single pass.
func resolveAmounts(tb *trialbalance.Report) map[string]types.Money {
	lines := make(map[string]TemplateLine, len(statutoryTemplate))
	for _, line := range statutoryTemplate {
		lines[line.Code] = line
	}
	amounts := make(map[string]types.Money, len(statutoryTemplate))

	var resolve func(code string) types.Money
	resolve = func(code string) types.Money {
		if v, ok := amounts[code]; ok {
			return v
		}
		line := lines[code]
		var amount types.Money
		if len(line.SumOf) > 0 {
			amount = types.Zero()
			for _, child := range line.SumOf {
				amount = amount.Add(resolve(child))
			}
		} else {
			amount = mappedAmount(tb, line)
		}
		amounts[code] = amount
		return amount
	}
	for _, line := range statutoryTemplate {
		resolve(line.Code)
	}
	return amounts
}

// mappedAmount reads the mapped accounts off the trial balance. Missing
// accounts contribute zero: a small business rarely uses the whole chart.
func mappedAmount(tb *trialbalance.Report, line TemplateLine) types.Money {
	amount := types.Zero()
	for _, m := range line.Mappings {
		row := tb.RowByCode(m.Account)
		if row == nil {
			continue
		}
		var v types.Money
		switch m.Side {
		case SideDebit:
			v = row.ClosingDebit
		case SideCredit:
			v = row.ClosingCredit
		case SideNet:
			v = row.NetClosing()
			if line.Section.creditOriented() {
				v = v.Neg()
			}
		}
		if m.Negative {
			v = v.Neg()
		}
		amount = amount.Add(v)
	}
	return amount
}

func mappingLabels(mappings []AccountMapping) []string {
	if len(mappings) == 0 {
		return nil
	}
	labels := make([]string, 0, len(mappings))
	for _, m := range mappings {
		label := fmt.Sprintf("%s:%s", m.Account, m.Side)
		if m.Negative {
			label = "-" + label
		}
		labels = append(labels, label)
	}
	return labels
}

func validate(rep *Report, totalLiabilitiesEquity types.Money) Validation {
	v := Validation{
		Difference: rep.TotalAssets.Sub(totalLiabilitiesEquity).Abs(),
	}
	v.IsBalanced = types.WithinTolerance(rep.TotalAssets, totalLiabilitiesEquity, types.BalanceTolerance)
	if !v.IsBalanced {
		v.Errors = append(v.Errors, fmt.Sprintf(
			"total assets %s do not equal total liabilities and equity %s (difference %s)",
			rep.TotalAssets.String(), totalLiabilitiesEquity.String(), v.Difference.String()))
	}
	if rep.TotalAssets.IsNegative() {
		v.Errors = append(v.Errors, fmt.Sprintf(
			"total assets are negative: %s", rep.TotalAssets.String()))
	}
	v.CanSubmit = len(v.Errors) == 0
	return v
}
