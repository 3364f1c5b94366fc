// Package cache provides the in-process statement bundle cache.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vibooks/internal/core/period"
	"vibooks/internal/domain/reports/pipeline"
	"vibooks/pkg/logger"
)

// DefaultTTL bounds staleness for periods that are still open; locked
// periods are immutable, so their entries only leave by lock-version change
// or eviction.
const DefaultTTL = 5 * time.Minute

type entry struct {
	bundle    *pipeline.Bundle
	expiresAt time.Time
}

// ReportCache caches statement bundles keyed by period and lock version.
// A lock transition bumps the version, which changes the key, so stale
// bundles are never served after an unlock and re-edit.
type ReportCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

func NewReportCache(ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReportCache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

func key(p period.Period, lockVersion int64) string {
	return fmt.Sprintf("%s@v%d", p.String(), lockVersion)
}

// Get returns the cached bundle for a period at a lock version, or nil.
func (c *ReportCache) Get(p period.Period, lockVersion int64) *pipeline.Bundle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key(p, lockVersion)]
	if !ok || time.Now().After(e.expiresAt) {
		return nil
	}
	return e.bundle
}

// Put stores a bundle.
func (c *ReportCache) Put(p period.Period, lockVersion int64, bundle *pipeline.Bundle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key(p, lockVersion)] = entry{
		bundle:    bundle,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate drops every cached version of a period.
func (c *ReportCache) Invalidate(ctx context.Context, p period.Period) {
	prefix := p.String() + "@v"
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
	logger.Debug(ctx, "report cache invalidated", "period", p.String())
}

// Sweep removes expired entries. Callers run it on a ticker.
func (c *ReportCache) Sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
