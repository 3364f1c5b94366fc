// Package balance_repo aggregates posted journal lines into the per-account
// balances the statement pipeline consumes.
package balance_repo

import (
	"context"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
	"vibooks/internal/domain/ledger"
	"vibooks/internal/infrastructure/storage/postgres"
)

// BalanceRepo implements ledger.BalanceProvider over the journal tables and
// answers the lock checklist's voucher queries.
type BalanceRepo struct {
	txManager *postgres.TxManager
	chart     *ledger.Chart
	builder   squirrel.StatementBuilderType
}

func NewBalanceRepo(txManager *postgres.TxManager, chart *ledger.Chart) *BalanceRepo {
	return &BalanceRepo{
		txManager: txManager,
		chart:     chart,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type balanceRow struct {
	AccountCode   string      `db:"account_code"`
	OpeningDebit  types.Money `db:"opening_debit"`
	OpeningCredit types.Money `db:"opening_credit"`
	PeriodDebit   types.Money `db:"period_debit"`
	PeriodCredit  types.Money `db:"period_credit"`
}

// GetBalances aggregates posted journal lines into one balance per account:
// everything dated before the range opens the period, everything inside it
// is period activity. Sub-account amounts are rolled up into their parents
// so level-1 rows always carry the full aggregate.
func (r *BalanceRepo) GetBalances(ctx context.Context, d period.Descriptor) ([]ledger.AccountBalance, error) {
	from, to := d.Range()

	const query = `
		SELECT
			l.account_code,
			COALESCE(SUM(CASE WHEN e.entry_date <  $1 THEN l.debit  ELSE 0 END), 0) AS opening_debit,
			COALESCE(SUM(CASE WHEN e.entry_date <  $1 THEN l.credit ELSE 0 END), 0) AS opening_credit,
			COALESCE(SUM(CASE WHEN e.entry_date >= $1 THEN l.debit  ELSE 0 END), 0) AS period_debit,
			COALESCE(SUM(CASE WHEN e.entry_date >= $1 THEN l.credit ELSE 0 END), 0) AS period_credit
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE e.status = 'posted' AND e.entry_date < $2
		GROUP BY l.account_code
		ORDER BY l.account_code
	`

	var rows []balanceRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query, from, to); err != nil {
		return nil, apperror.NewProviderUnavailable(err)
	}

	byCode := make(map[string]*ledger.AccountBalance, len(rows))
	add := func(code string, row balanceRow) {
		b, ok := byCode[code]
		if !ok {
			b = &ledger.AccountBalance{AccountCode: code}
			byCode[code] = b
		}
		b.OpeningDebit = b.OpeningDebit.Add(row.OpeningDebit)
		b.OpeningCredit = b.OpeningCredit.Add(row.OpeningCredit)
		b.PeriodDebit = b.PeriodDebit.Add(row.PeriodDebit)
		b.PeriodCredit = b.PeriodCredit.Add(row.PeriodCredit)
	}

	for _, row := range rows {
		add(row.AccountCode, row)
		// Roll sub-account activity up the hierarchy.
		tpl, ok := r.chart.Lookup(row.AccountCode)
		for ok && tpl.ParentCode != "" {
			add(tpl.ParentCode, row)
			tpl, ok = r.chart.Lookup(tpl.ParentCode)
		}
	}

	out := make([]ledger.AccountBalance, 0, len(byCode))
	for _, b := range byCode {
		netOpening(b)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return ledger.CodeLess(out[i].AccountCode, out[j].AccountCode) })
	return out, nil
}

// netOpening presents the opening balance on a single side.
func netOpening(b *ledger.AccountBalance) {
	net := b.OpeningDebit.Sub(b.OpeningCredit)
	if net.IsNegative() {
		b.OpeningDebit = types.Zero()
		b.OpeningCredit = net.Neg()
	} else {
		b.OpeningDebit = net
		b.OpeningCredit = types.Zero()
	}
}

// CountUnapprovedVouchers counts posted entries in the period still waiting
// for approval.
func (r *BalanceRepo) CountUnapprovedVouchers(ctx context.Context, p period.Period) (int, error) {
	return r.countEntries(ctx, p, squirrel.Eq{"status": "posted", "approved": false})
}

// CountDraftEntries counts entries in the period still in draft.
func (r *BalanceRepo) CountDraftEntries(ctx context.Context, p period.Period) (int, error) {
	return r.countEntries(ctx, p, squirrel.Eq{"status": "draft"})
}

func (r *BalanceRepo) countEntries(ctx context.Context, p period.Period, pred squirrel.Eq) (int, error) {
	from, to := p.Range()

	query, args, err := r.builder.
		Select("COUNT(*)").
		From("journal_entries").
		Where(pred).
		Where(squirrel.GtOrEq{"entry_date": from}).
		Where(squirrel.Lt{"entry_date": to}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperror.NewProviderUnavailable(err)
	}
	return count, nil
}
