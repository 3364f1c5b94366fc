// Package cashflow builds the indirect-method cash flow statement,
// reconciling accrual profit to actual cash movement and cross-checking the
// result against the ledger's cash balances.
package cashflow

import (
	"time"

	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
)

// Section names one of the three activity groups.
type Section string

const (
	SectionOperating Section = "OPERATING"
	SectionInvesting Section = "INVESTING"
	SectionFinancing Section = "FINANCING"
	// SectionSummary holds net flow, opening cash and the reconciliation.
	SectionSummary Section = "SUMMARY"
)

// Row is one statement line. Formula documents how the amount was derived
// from ledger activity; it is display-only and never evaluated.
type Row struct {
	Code    string      `json:"code"`
	Name    string      `json:"name"`
	Level   int         `json:"level"`
	Section Section     `json:"section"`
	Amount  types.Money `json:"amount"`

	AccountMapping []string `json:"accountMapping,omitempty"`
	Formula        string   `json:"formula,omitempty"`

	// IsNegative marks lines that by construction reduce cash (outflows),
	// regardless of the sign the amount happens to carry this period.
	IsNegative bool `json:"isNegative,omitempty"`
	IsTotal    bool `json:"isTotal,omitempty"`
}

// Validation is the statement's reconciliation check. The difference between
// calculated and actual ending cash is always recorded; anything past the
// balance tolerance is flagged, and past one currency unit it blocks
// submission.
type Validation struct {
	IsValid    bool        `json:"isValid"`
	Difference types.Money `json:"difference"`
	Errors     []string    `json:"errors,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
	CanSubmit  bool        `json:"canSubmit"`
}

// Report is the rendered cash flow statement for one period.
type Report struct {
	Period   period.Period `json:"-"`
	PeriodID string        `json:"period"`
	FromDate time.Time     `json:"fromDate"`
	ToDate   time.Time     `json:"toDate"`

	Rows []Row `json:"rows"`

	Operating types.Money `json:"operatingCashFlow"`
	Investing types.Money `json:"investingCashFlow"`
	Financing types.Money `json:"financingCashFlow"`

	NetCashFlow          types.Money `json:"netCashFlow"`
	CashBeginning        types.Money `json:"cashBeginning"`
	ExchangeRateEffect   types.Money `json:"exchangeRateEffect"`
	CashEndingCalculated types.Money `json:"cashEndingCalculated"`
	CashEndingActual     types.Money `json:"cashEndingActual"`

	Validation Validation `json:"validation"`

	// Explanations are advisory profit-versus-cash narratives, never
	// validation failures.
	Explanations []string `json:"explanations,omitempty"`
}

// RowByCode returns the line with the given statutory code, or nil.
func (r *Report) RowByCode(code string) *Row {
	for i := range r.Rows {
		if r.Rows[i].Code == code {
			return &r.Rows[i]
		}
	}
	return nil
}
