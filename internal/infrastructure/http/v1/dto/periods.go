package dto

import (
	"vibooks/internal/domain/periodlock"
)

// UnlockRequest carries the mandatory justification for reopening a period.
type UnlockRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PeriodListRequest filters the lock list by year.
type PeriodListRequest struct {
	Year int `form:"year" binding:"required,min=1900,max=9999"`
}

// CanModifyResponse reports whether a period accepts postings.
type CanModifyResponse struct {
	Period    string `json:"period"`
	CanModify bool   `json:"canModify"`
	Reason    string `json:"reason,omitempty"`
}

// LockListResponse wraps the per-year lock list.
type LockListResponse struct {
	Year  int              `json:"year"`
	Locks []periodlock.Lock `json:"locks"`
}
