// Package trialbalance builds the trial balance, the first stage of the
// statement pipeline. Every downstream statement consumes its output.
package trialbalance

import (
	"time"

	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
	"vibooks/internal/domain/ledger"
)

// Filter defines what the trial balance includes.
type Filter struct {
	Descriptor period.Descriptor

	// IncludeZeroBalance keeps accounts with no activity and no balance.
	IncludeZeroBalance bool

	// IncludeSubAccounts keeps level-2/3 accounts alongside their parents.
	IncludeSubAccounts bool

	// AccountLevel cuts the hierarchy off at this depth (0 = no cutoff).
	AccountLevel int
}

// Row is one account line of the trial balance.
type Row struct {
	ledger.AccountBalance

	// IsAbnormal marks a balance sitting on the wrong side of the account's
	// normal nature. Amphibious accounts are never flagged.
	IsAbnormal     bool   `json:"isAbnormal"`
	AbnormalReason string `json:"abnormalReason,omitempty"`
}

// BalanceCheck is one debit-vs-credit comparison.
type BalanceCheck struct {
	DebitTotal  types.Money `json:"debitTotal"`
	CreditTotal types.Money `json:"creditTotal"`
	Difference  types.Money `json:"difference"`
	Balanced    bool        `json:"balanced"`
}

// BalanceCheckResult holds the three independent balance checks.
// Checks cover level-1 accounts only to avoid double counting when
// sub-accounts are included.
type BalanceCheckResult struct {
	Opening BalanceCheck `json:"opening"`
	Period  BalanceCheck `json:"period"`
	Closing BalanceCheck `json:"closing"`

	IsFullyBalanced  bool `json:"isFullyBalanced"`
	AbnormalAccounts int  `json:"abnormalAccounts"`

	// CanGenerateReport gates the downstream statement builders.
	CanGenerateReport bool `json:"canGenerateReport"`
}

// Report is the full trial balance for a period.
type Report struct {
	Period   period.Period `json:"-"`
	PeriodID string        `json:"period"`
	FromDate time.Time     `json:"fromDate"`
	ToDate   time.Time     `json:"toDate"`

	Rows  []Row              `json:"rows"`
	Check BalanceCheckResult `json:"check"`

	// Warnings collects non-fatal data integrity issues (unknown account
	// codes whose rows were skipped).
	Warnings []string `json:"warnings,omitempty"`
}

// RowByCode returns the row for an account code, or nil.
func (r *Report) RowByCode(code string) *Row {
	for i := range r.Rows {
		if r.Rows[i].AccountCode == code {
			return &r.Rows[i]
		}
	}
	return nil
}
