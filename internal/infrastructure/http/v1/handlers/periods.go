package handlers

import (
	"github.com/gin-gonic/gin"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/period"
	"vibooks/internal/domain/periodlock"
	"vibooks/internal/infrastructure/cache"
	"vibooks/internal/infrastructure/http/v1/dto"
)

// PeriodsHandler handles HTTP requests for the period lock lifecycle.
type PeriodsHandler struct {
	*BaseHandler
	locks *periodlock.Service
	cache *cache.ReportCache
}

// NewPeriodsHandler creates a new periods handler.
func NewPeriodsHandler(base *BaseHandler, locks *periodlock.Service, reportCache *cache.ReportCache) *PeriodsHandler {
	return &PeriodsHandler{
		BaseHandler: base,
		locks:       locks,
		cache:       reportCache,
	}
}

// List handles GET /periods
func (h *PeriodsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PeriodListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	locks, err := h.locks.List(ctx, req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LockListResponse{Year: req.Year, Locks: locks})
}

// Get handles GET /periods/:period
func (h *PeriodsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	p, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	lock, err := h.locks.Get(ctx, p)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lock)
}

// GetChecklist handles GET /periods/:period/checklist
func (h *PeriodsHandler) GetChecklist(c *gin.Context) {
	ctx := c.Request.Context()

	p, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	checklist, err := h.locks.GetLockChecklist(ctx, p)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, checklist)
}

// CanModify handles GET /periods/:period/can-modify
func (h *PeriodsHandler) CanModify(c *gin.Context) {
	ctx := c.Request.Context()

	p, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	canModify, reason, err := h.locks.CanModify(ctx, p)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.CanModifyResponse{
		Period:    p.String(),
		CanModify: canModify,
		Reason:    reason,
	})
}

// GetHistory handles GET /periods/:period/history
func (h *PeriodsHandler) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()

	p, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	events, err := h.locks.History(ctx, p)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, events)
}

// Lock handles POST /periods/:period/lock
func (h *PeriodsHandler) Lock(c *gin.Context) {
	ctx := c.Request.Context()

	p, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	lock, err := h.locks.Lock(ctx, p)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.cache.Invalidate(ctx, p)
	h.OK(c, lock)
}

// Unlock handles POST /periods/:period/unlock
func (h *PeriodsHandler) Unlock(c *gin.Context) {
	ctx := c.Request.Context()

	p, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	var req dto.UnlockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lock, err := h.locks.Unlock(ctx, p, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.cache.Invalidate(ctx, p)
	h.OK(c, lock)
}

// Close handles POST /periods/:period/close
func (h *PeriodsHandler) Close(c *gin.Context) {
	ctx := c.Request.Context()

	p, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	lock, err := h.locks.Close(ctx, p)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.cache.Invalidate(ctx, p)
	h.OK(c, lock)
}

func (h *PeriodsHandler) bindPeriod(c *gin.Context) (period.Period, bool) {
	p, err := period.Parse(c.Param("period"))
	if err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return period.Period{}, false
	}
	return p, true
}
