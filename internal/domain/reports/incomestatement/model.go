// Package incomestatement derives the profit and loss statement from trial
// balance activity. Its pre-tax profit is the starting point of the indirect
// cash flow statement, and its validity is a period-lock checklist item.
package incomestatement

import (
	"time"

	"vibooks/internal/core/period"
	"vibooks/internal/core/types"
)

// Row is one statutory line of the income statement.
type Row struct {
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	Level          int         `json:"level"`
	Amount         types.Money `json:"amount"`
	AccountMapping []string    `json:"accountMapping,omitempty"`
}

// Report is the income statement for a period.
type Report struct {
	Period   period.Period `json:"-"`
	PeriodID string        `json:"period"`
	FromDate time.Time     `json:"fromDate"`
	ToDate   time.Time     `json:"toDate"`

	Rows []Row `json:"rows"`

	Revenue         types.Money `json:"revenue"`
	NetRevenue      types.Money `json:"netRevenue"`
	GrossProfit     types.Money `json:"grossProfit"`
	OperatingProfit types.Money `json:"operatingProfit"`
	PreTaxProfit    types.Money `json:"preTaxProfit"`
	TaxExpense      types.Money `json:"taxExpense"`
	NetProfit       types.Money `json:"netProfit"`

	// Valid mirrors the underlying trial balance check: without balanced
	// books the profit figure is meaningless.
	Valid bool `json:"valid"`
}

// RowByCode returns the row for a statutory code, or nil.
func (r *Report) RowByCode(code string) *Row {
	for i := range r.Rows {
		if r.Rows[i].Code == code {
			return &r.Rows[i]
		}
	}
	return nil
}
