package balancesheet

import (
	"time"

	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
)

// Row is one rendered statement line.
type Row struct {
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Level    int         `json:"level"`
	Section  Section     `json:"section"`
	Amount   types.Money `json:"amount"`
	IsTotal  bool        `json:"isTotal,omitempty"`
	Mappings []string    `json:"accountMapping,omitempty"`
}

// Validation is the statement's self-check. A failed check does not block
// generation: the report is still returned for display with CanSubmit=false
// and the exact difference, so the accountant can see what to fix.
type Validation struct {
	IsBalanced bool        `json:"isBalanced"`
	Difference types.Money `json:"difference"`
	Errors     []string    `json:"errors,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
	CanSubmit  bool        `json:"canSubmit"`
}

// Report is the rendered balance sheet for one period. It carries no
// generation timestamp: rebuilding over unchanged books yields an identical
// document.
type Report struct {
	Period   period.Period `json:"-"`
	PeriodID string        `json:"period"`
	FromDate time.Time     `json:"fromDate"`
	ToDate   time.Time     `json:"toDate"`

	Rows []Row `json:"rows"`

	TotalAssets      types.Money `json:"totalAssets"`
	TotalLiabilities types.Money `json:"totalLiabilities"`
	TotalEquity      types.Money `json:"totalEquity"`

	Validation Validation `json:"validation"`
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
