package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibooks/internal/core/period"
	"vibooks/internal/domain/reports/pipeline"
	"vibooks/internal/domain/reports/trialbalance"
)

func bundleFor(p period.Period) *pipeline.Bundle {
	return &pipeline.Bundle{
		TrialBalance: &trialbalance.Report{PeriodID: p.String()},
	}
}

func TestGetPut(t *testing.T) {
	c := NewReportCache(time.Minute)
	p := period.MustParse("2025-03")

	assert.Nil(t, c.Get(p, 0))

	c.Put(p, 0, bundleFor(p))
	got := c.Get(p, 0)
	require.NotNil(t, got)
	assert.Equal(t, "2025-03", got.TrialBalance.PeriodID)

	// Different lock version is a different key.
	assert.Nil(t, c.Get(p, 1))
}

func TestInvalidateDropsAllVersions(t *testing.T) {
	c := NewReportCache(time.Minute)
	p := period.MustParse("2025-03")
	other := period.MustParse("2025-04")

	c.Put(p, 0, bundleFor(p))
	c.Put(p, 1, bundleFor(p))
	c.Put(other, 0, bundleFor(other))

	c.Invalidate(context.Background(), p)

	assert.Nil(t, c.Get(p, 0))
	assert.Nil(t, c.Get(p, 1))
	assert.NotNil(t, c.Get(other, 0))
}

func TestExpiry(t *testing.T) {
	c := NewReportCache(time.Millisecond)
	p := period.MustParse("2025-03")

	c.Put(p, 0, bundleFor(p))
	time.Sleep(5 * time.Millisecond)

	assert.Nil(t, c.Get(p, 0))

	c.Sweep()
	c.mu.RLock()
	assert.Empty(t, c.entries)
	c.mu.RUnlock()
}
