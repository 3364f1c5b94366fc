// Package ledger provides the aggregated account balance model consumed by
// every statement builder, and the chart of accounts it is interpreted
// against.
package ledger

import (
	"context"

	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
)

// Nature is the side a "normal" balance of an account sits on.
type Nature string

const (
	NatureDebit  Nature = "DEBIT"
	NatureCredit Nature = "CREDIT"

	// NatureAmphibious marks control accounts (trade receivables/payables)
	// whose normal side depends on context; they are exempt from the
	// abnormal-balance check.
	NatureAmphibious Nature = "AMPHIBIOUS"
)

// AccountType classifies an account for statement mapping.
type AccountType string

const (
	TypeAsset     AccountType = "ASSET"
	TypeLiability AccountType = "LIABILITY"
	TypeEquity    AccountType = "EQUITY"
	TypeRevenue   AccountType = "REVENUE"
	TypeCost      AccountType = "COST"
	TypeExpense   AccountType = "EXPENSE"
)

// AccountBalance aggregates one account's activity for one period.
// Balances are recomputed fresh per report request, never mutated in place.
//
// Net presentation invariant: at most one of ClosingDebit/ClosingCredit is
// non-zero, and closing = opening + period debit - period credit netted onto
// the correct side.
type AccountBalance struct {
	AccountCode string      `db:"account_code" json:"accountCode"`
	AccountName string      `db:"account_name" json:"accountName"`
	Level       int         `db:"level" json:"level"`
	ParentCode  string      `db:"parent_code" json:"parentCode,omitempty"`
	Nature      Nature      `db:"nature" json:"nature"`
	AccountType AccountType `db:"account_type" json:"accountType"`

	OpeningDebit  types.Money `db:"opening_debit" json:"openingDebit"`
	OpeningCredit types.Money `db:"opening_credit" json:"openingCredit"`
	PeriodDebit   types.Money `db:"period_debit" json:"periodDebit"`
	PeriodCredit  types.Money `db:"period_credit" json:"periodCredit"`
	ClosingDebit  types.Money `db:"closing_debit" json:"closingDebit"`
	ClosingCredit types.Money `db:"closing_credit" json:"closingCredit"`
}

// ComputeClosing derives the netted closing balance from opening and period
// activity, replacing whatever the closing fields held.
func (b *AccountBalance) ComputeClosing() {
	net := b.OpeningDebit.Sub(b.OpeningCredit).Add(b.PeriodDebit).Sub(b.PeriodCredit)
	if net.IsNegative() {
		b.ClosingDebit = types.Zero()
		b.ClosingCredit = net.Neg()
	} else {
		b.ClosingDebit = net
		b.ClosingCredit = types.Zero()
	}
}

// NetOpening returns opening debit minus opening credit.
func (b *AccountBalance) NetOpening() types.Money {
	return b.OpeningDebit.Sub(b.OpeningCredit)
}

// NetClosing returns closing debit minus closing credit.
func (b *AccountBalance) NetClosing() types.Money {
	return b.ClosingDebit.Sub(b.ClosingCredit)
}

// IsZero reports whether every amount on the balance is zero.
func (b *AccountBalance) IsZero() bool {
	return b.OpeningDebit.IsZero() && b.OpeningCredit.IsZero() &&
		b.PeriodDebit.IsZero() && b.PeriodCredit.IsZero() &&
		b.ClosingDebit.IsZero() && b.ClosingCredit.IsZero()
}

// BalanceProvider supplies aggregated balances for a period range.
//
// Implementations must be deterministic and idempotent for a closed period.
// The provider may leave template metadata (name, nature, type) empty; the
// trial balance builder enriches rows from the chart of accounts.
// An unreachable data source must yield a retryable error
// (apperror.NewProviderUnavailable), never a hang.
type BalanceProvider interface {
	GetBalances(ctx context.Context, d period.Descriptor) ([]AccountBalance, error)
}
