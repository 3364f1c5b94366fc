package dto

import (
	"time"

	"vibooks/internal/core/apperror"
	"vibooks/internal/core/period"
)

// ReportRequest carries the query parameters shared by all statement
// endpoints. Period is the canonical form: "2025", "2025-03" or "2025-Q1".
type ReportRequest struct {
	Period   string `form:"period" binding:"required"`
	FromDate string `form:"fromDate"`
	ToDate   string `form:"toDate"`
}

// TrialBalanceRequest adds the trial-balance-only filters.
type TrialBalanceRequest struct {
	ReportRequest
	IncludeZeroBalance bool `form:"includeZeroBalance"`
	IncludeSubAccounts bool `form:"includeSubAccounts"`
	AccountLevel       int  `form:"accountLevel" binding:"min=0,max=3"`
}

// Descriptor resolves the request into a period descriptor.
func (r *ReportRequest) Descriptor() (period.Descriptor, error) {
	p, err := period.Parse(r.Period)
	if err != nil {
		return period.Descriptor{}, apperror.NewValidation(err.Error())
	}
	d := period.Descriptor{Period: p}

	if r.FromDate != "" {
		from, err := time.Parse(time.RFC3339, r.FromDate)
		if err != nil {
			return period.Descriptor{}, apperror.NewValidation("invalid fromDate format, expected RFC3339")
		}
		d.FromDate = &from
	}
	if r.ToDate != "" {
		to, err := time.Parse(time.RFC3339, r.ToDate)
		if err != nil {
			return period.Descriptor{}, apperror.NewValidation("invalid toDate format, expected RFC3339")
		}
		d.ToDate = &to
	}
	return d, nil
}
