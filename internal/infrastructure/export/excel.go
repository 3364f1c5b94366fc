// Package export renders statement bundles as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"vibooks/internal/core/types"
	"vibooks/internal/domain/reports/balancesheet"
	"vibooks/internal/domain/reports/cashflow"
	"vibooks/internal/domain/reports/incomestatement"
	"vibooks/internal/domain/reports/pipeline"
	"vibooks/internal/domain/reports/trialbalance"
)

const (
	sheetTrialBalance    = "Trial Balance"
	sheetIncomeStatement = "Income Statement"
	sheetBalanceSheet    = "Balance Sheet"
	sheetCashFlow        = "Cash Flow"
)

// ContentType is the MIME type for XLSX downloads.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename builds the attachment name for a bundle export.
func Filename(periodID string) string {
	return fmt.Sprintf("statements-%s.xlsx", periodID)
}

// WriteBundle renders the bundle as a four-sheet workbook.
func WriteBundle(w io.Writer, b *pipeline.Bundle) error {
	f, err := buildWorkbook(b)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func buildWorkbook(b *pipeline.Bundle) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeTrialBalance(f, b.TrialBalance); err != nil {
		return nil, err
	}
	if err := writeIncomeStatement(f, b.IncomeStatement); err != nil {
		return nil, err
	}
	if err := writeBalanceSheet(f, b.BalanceSheet); err != nil {
		return nil, err
	}
	if err := writeCashFlow(f, b.CashFlow); err != nil {
		return nil, err
	}

	// NewFile seeds a default "Sheet1" we never use.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	idx, err := f.GetSheetIndex(sheetTrialBalance)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

func writeTrialBalance(f *excelize.File, r *trialbalance.Report) error {
	s, err := newSheet(f, sheetTrialBalance,
		"Account", "Name", "Opening Dr", "Opening Cr", "Period Dr", "Period Cr", "Closing Dr", "Closing Cr", "Abnormal")
	if err != nil {
		return err
	}
	for _, row := range r.Rows {
		abnormal := ""
		if row.IsAbnormal {
			abnormal = row.AbnormalReason
		}
		s.row(
			indent(row.AccountCode, row.Level),
			row.AccountName,
			money(row.OpeningDebit), money(row.OpeningCredit),
			money(row.PeriodDebit), money(row.PeriodCredit),
			money(row.ClosingDebit), money(row.ClosingCredit),
			abnormal,
		)
	}
	s.row()
	s.row("", "Balanced", r.Check.IsFullyBalanced)
	s.row("", "Closing difference", money(r.Check.Closing.Difference))
	return s.err
}

func writeIncomeStatement(f *excelize.File, r *incomestatement.Report) error {
	s, err := newSheet(f, sheetIncomeStatement, "Code", "Item", "Amount")
	if err != nil {
		return err
	}
	for _, row := range r.Rows {
		s.row(row.Code, indent(row.Name, row.Level), money(row.Amount))
	}
	return s.err
}

func writeBalanceSheet(f *excelize.File, r *balancesheet.Report) error {
	s, err := newSheet(f, sheetBalanceSheet, "Code", "Item", "Amount")
	if err != nil {
		return err
	}
	for _, row := range r.Rows {
		s.row(row.Code, indent(row.Name, row.Level), money(row.Amount))
	}
	s.row()
	s.row("", "Total assets", money(r.TotalAssets))
	s.row("", "Total liabilities and equity", money(r.TotalLiabilities.Add(r.TotalEquity)))
	s.row("", "Balanced", r.Validation.IsBalanced)
	return s.err
}

func writeCashFlow(f *excelize.File, r *cashflow.Report) error {
	s, err := newSheet(f, sheetCashFlow, "Code", "Item", "Amount")
	if err != nil {
		return err
	}
	for _, row := range r.Rows {
		s.row(row.Code, indent(row.Name, row.Level), money(row.Amount))
	}
	s.row()
	s.row("", "Calculated ending cash", money(r.CashEndingCalculated))
	s.row("", "Actual ending cash", money(r.CashEndingActual))
	s.row("", "Reconciled", r.Validation.IsValid)
	for _, e := range r.Explanations {
		s.row("", e)
	}
	return s.err
}

// sheet tracks the next row and the first write error so callers append
// rows without checking every cell.
type sheet struct {
	f    *excelize.File
	name string
	next int
	err  error
}

func newSheet(f *excelize.File, name string, headers ...string) (*sheet, error) {
	if _, err := f.NewSheet(name); err != nil {
		return nil, err
	}
	s := &sheet{f: f, name: name, next: 1}
	vals := make([]any, len(headers))
	for i, h := range headers {
		vals[i] = h
	}
	s.row(vals...)
	return s, s.err
}

func (s *sheet) row(values ...any) {
	if s.err != nil {
		s.next++
		return
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, s.next)
		if err != nil {
			s.err = err
			return
		}
		if err := s.f.SetCellValue(s.name, cell, v); err != nil {
			s.err = err
			return
		}
	}
	s.next++
}

func money(m types.Money) float64 {
	return m.InexactFloat64()
}

func indent(text string, level int) string {
	if level <= 1 {
		return text
	}
	return strings.Repeat("  ", level-1) + text
}
