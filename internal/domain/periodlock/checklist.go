package periodlock

import (
	"context"

	"vibooks/internal/core/period"
)

// Severity splits checklist items into blocking and advisory.
type Severity string

const (
	SeverityRequired Severity = "REQUIRED"
	SeverityWarning  Severity = "WARNING"
)

// Check names used across the checklist, the API and tests.
const (
	CheckTrialBalanceBalanced = "trial-balance-balanced"
	CheckBalanceSheetValid    = "balance-sheet-valid"
	CheckIncomeStatementValid = "income-statement-valid"
	CheckCashFlowValid        = "cash-flow-valid"
	CheckPreviousPeriodLocked = "previous-period-locked"
	CheckVouchersApproved     = "all-vouchers-approved"
	CheckNoDraftEntries       = "no-draft-entries"
)

// Item is one evaluated checklist entry.
type Item struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Passed   bool     `json:"passed"`
	Message  string   `json:"message,omitempty"`
	Skipped  bool     `json:"skipped,omitempty"`
}

// Checklist is the full pre-lock evaluation for one period.
type Checklist struct {
	PeriodID string `json:"period"`
	Items    []Item `json:"items"`

	// CanLock is true when every REQUIRED item passed. WARNING failures
	// never block, only surface.
	CanLock bool `json:"canLock"`
}

// FailedRequired lists the messages of failed REQUIRED items, in checklist
// order.
func (c *Checklist) FailedRequired() []string {
	var out []string
	for _, item := range c.Items {
		if item.Severity == SeverityRequired && !item.Passed && !item.Skipped {
			out = append(out, item.Message)
		}
	}
	return out
}

// StatementChecks summarizes the validity of each derived statement,
// evaluated without the lock requirement (cash-flow-valid is itself a
// condition for locking). The pipeline orchestrator implements the
// evaluation.
type StatementChecks struct {
	TrialBalanceBalanced bool
	BalanceSheetValid    bool
	IncomeStatementValid bool
	CashFlowValid        bool
}

// StatementEvaluator derives the statement checks for a period.
type StatementEvaluator interface {
	EvaluateStatements(ctx context.Context, p period.Period) (StatementChecks, error)
}

// JournalStatus answers the advisory checks about the period's source
// documents. Counts of zero pass.
type JournalStatus interface {
	CountUnapprovedVouchers(ctx context.Context, p period.Period) (int, error)
	CountDraftEntries(ctx context.Context, p period.Period) (int, error)
}
