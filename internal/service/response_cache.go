package service

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/observability"
)

// Sampler produces response-time samples keyed by normalized assignee email.
type Sampler interface {
	Sample(ctx context.Context) (map[string][]time.Duration, error)
}

type cacheEntry struct {
	samples    map[string][]time.Duration
	computedAt time.Time
}

// ResponseTimeCache holds the most recently sampled response times for the
// whole process. Readers never block: a fresh entry is returned directly; an
// expired entry is still served while a refresh runs in the background; only
// before the first successful refresh does Get return an empty map, leaving
// callers to fall back to workload heuristics. The slot is replaced by whole
// value swap, so concurrent readers never observe a partial map.
type ResponseTimeCache struct {
	sampler Sampler
	runner  TaskRunner
	ttl     time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time

	entry atomic.Pointer[cacheEntry]
}

// NewResponseTimeCache constructs the cache. One instance per process.
func NewResponseTimeCache(sampler Sampler, runner TaskRunner, ttl time.Duration, logger *zap.Logger, metrics *observability.Metrics) *ResponseTimeCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResponseTimeCache{
		sampler: sampler,
		runner:  runner,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Get returns the cached samples without ever blocking on a refresh.
func (c *ResponseTimeCache) Get() map[string][]time.Duration {
	entry := c.entry.Load()
	now := c.now()

	if entry != nil {
		age := now.Sub(entry.computedAt)
		c.metrics.SetCacheAge(age)
		if age < c.ttl {
			return entry.samples
		}
	}

	c.triggerRefresh()

	if entry != nil {
		return entry.samples
	}
	return map[string][]time.Duration{}
}

// triggerRefresh schedules a background sample run. Concurrent triggers may
// schedule redundant refreshes; the operation is idempotent so the last
// writer wins and the next read self-corrects.
func (c *ResponseTimeCache) triggerRefresh() {
	accepted := c.runner.Submit("response-time-refresh", func() error {
		samples, err := c.sampler.Sample(context.Background())
		if err != nil {
			c.metrics.RecordCacheRefresh(false)
			return err
		}
		c.entry.Store(&cacheEntry{samples: samples, computedAt: c.now()})
		c.metrics.RecordCacheRefresh(true)
		return nil
	})
	if !accepted {
		c.logger.Warn("response-time refresh dropped, worker queue full")
	}
}
