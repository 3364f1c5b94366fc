package handlers

import (
	"github.com/gin-gonic/gin"

	"vibooks/internal/core/period"
	"vibooks/internal/domain/periodlock"
	"vibooks/internal/domain/reports/balancesheet"
	"vibooks/internal/domain/reports/cashflow"
	"vibooks/internal/domain/reports/incomestatement"
	"vibooks/internal/domain/reports/pipeline"
	"vibooks/internal/domain/reports/trialbalance"
	"vibooks/internal/infrastructure/cache"
	"vibooks/internal/infrastructure/export"
	"vibooks/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for financial statements.
type ReportsHandler struct {
	*BaseHandler
	trialBalance    *trialbalance.Service
	incomeStatement *incomestatement.Service
	balanceSheet    *balancesheet.Service
	cashFlow        *cashflow.Service
	pipeline        *pipeline.Service
	locks           *periodlock.Service
	cache           *cache.ReportCache
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(
	base *BaseHandler,
	trialBalance *trialbalance.Service,
	incomeStatement *incomestatement.Service,
	balanceSheet *balancesheet.Service,
	cashFlow *cashflow.Service,
	pipe *pipeline.Service,
	locks *periodlock.Service,
	reportCache *cache.ReportCache,
) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler:     base,
		trialBalance:    trialBalance,
		incomeStatement: incomeStatement,
		balanceSheet:    balanceSheet,
		cashFlow:        cashFlow,
		pipeline:        pipe,
		locks:           locks,
		cache:           reportCache,
	}
}

// GetTrialBalance handles GET /reports/trial-balance
func (h *ReportsHandler) GetTrialBalance(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TrialBalanceRequest
	if !h.BindQuery(c, &req) {
		return
	}
	d, err := req.Descriptor()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.trialBalance.Build(ctx, trialbalance.Filter{
		Descriptor:         d,
		IncludeZeroBalance: req.IncludeZeroBalance,
		IncludeSubAccounts: req.IncludeSubAccounts,
		AccountLevel:       req.AccountLevel,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetIncomeStatement handles GET /reports/income-statement
func (h *ReportsHandler) GetIncomeStatement(c *gin.Context) {
	ctx := c.Request.Context()

	d, ok := h.bindDescriptor(c)
	if !ok {
		return
	}

	report, err := h.incomeStatement.Build(ctx, d)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetBalanceSheet handles GET /reports/balance-sheet
func (h *ReportsHandler) GetBalanceSheet(c *gin.Context) {
	ctx := c.Request.Context()

	d, ok := h.bindDescriptor(c)
	if !ok {
		return
	}

	report, err := h.balanceSheet.Build(ctx, d)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetCashFlow handles GET /reports/cash-flow
//
// With ?draft=true the lock requirement is skipped, so accountants can
// preview the statement while the period is still open.
func (h *ReportsHandler) GetCashFlow(c *gin.Context) {
	ctx := c.Request.Context()

	d, ok := h.bindDescriptor(c)
	if !ok {
		return
	}

	build := h.cashFlow.Build
	if c.Query("draft") == "true" {
		build = h.cashFlow.BuildDraft
	}

	report, err := build(ctx, d)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetBundle handles GET /reports/package
//
// Runs the whole statement pipeline. Final (non-draft) bundles are cached
// per period and lock version.
func (h *ReportsHandler) GetBundle(c *gin.Context) {
	bundle, err := h.bundle(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	if bundle == nil {
		return // binding error already reported
	}
	h.OK(c, bundle)
}

// ExportBundle handles GET /reports/package/export
//
// Streams the statement bundle as an XLSX workbook.
func (h *ReportsHandler) ExportBundle(c *gin.Context) {
	bundle, err := h.bundle(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	if bundle == nil {
		return
	}

	c.Header("Content-Type", export.ContentType)
	c.Header("Content-Disposition", "attachment; filename="+export.Filename(bundle.TrialBalance.PeriodID))
	if err := export.WriteBundle(c.Writer, bundle); err != nil {
		h.Error(c, err)
	}
}

func (h *ReportsHandler) bundle(c *gin.Context) (*pipeline.Bundle, error) {
	ctx := c.Request.Context()

	var req dto.ReportRequest
	if !h.BindQuery(c, &req) {
		return nil, nil
	}
	d, err := req.Descriptor()
	if err != nil {
		return nil, err
	}

	if c.Query("draft") == "true" {
		return h.pipeline.RunDraft(ctx, d)
	}

	// Date-range overrides bypass the cache: the key is period-shaped.
	cacheable := d.FromDate == nil && d.ToDate == nil
	var version int64
	if cacheable {
		lock, err := h.locks.Get(ctx, d.Period)
		if err != nil {
			return nil, err
		}
		version = lock.Version
		if cached := h.cache.Get(d.Period, version); cached != nil {
			return cached, nil
		}
	}

	bundle, err := h.pipeline.Run(ctx, d)
	if err != nil {
		return nil, err
	}
	if cacheable {
		h.cache.Put(d.Period, version, bundle)
	}
	return bundle, nil
}

func (h *ReportsHandler) bindDescriptor(c *gin.Context) (period.Descriptor, bool) {
	var req dto.ReportRequest
	if !h.BindQuery(c, &req) {
		return period.Descriptor{}, false
	}
	d, err := req.Descriptor()
	if err != nil {
		h.Error(c, err)
		return period.Descriptor{}, false
	}
	return d, true
}
