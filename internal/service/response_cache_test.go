package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/observability"
)

type fakeSampler struct {
	samples map[string][]time.Duration
	err     error
	calls   int
}

func (f *fakeSampler) Sample(ctx context.Context) (map[string][]time.Duration, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.samples, nil
}

// syncRunner executes submitted tasks inline so tests stay deterministic.
type syncRunner struct {
	submissions int
}

func (r *syncRunner) Submit(name string, task func() error) bool {
	r.submissions++
	_ = task()
	return true
}

func newTestCache(sampler Sampler, runner TaskRunner, ttl time.Duration) (*ResponseTimeCache, *time.Time) {
	cache := NewResponseTimeCache(sampler, runner, ttl, zap.NewNop(), observability.NewMetrics("cache-test"))
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	return cache, &now
}

func TestCache_FirstReadReturnsEmptyAndTriggersRefresh(t *testing.T) {
	sampler := &fakeSampler{samples: map[string][]time.Duration{"a@corp.com": {time.Hour}}}
	runner := &syncRunner{}
	cache, _ := newTestCache(sampler, runner, 5*time.Minute)

	got := cache.Get()
	if len(got) != 0 {
		t.Fatalf("first read must return empty map, got %v", got)
	}
	if runner.submissions != 1 || sampler.calls != 1 {
		t.Fatalf("expected exactly one refresh, got %d submissions / %d samples", runner.submissions, sampler.calls)
	}
}

func TestCache_FreshReadsReturnIdenticalData(t *testing.T) {
	sampler := &fakeSampler{samples: map[string][]time.Duration{"a@corp.com": {time.Hour, 2 * time.Hour}}}
	runner := &syncRunner{}
	cache, _ := newTestCache(sampler, runner, 5*time.Minute)

	cache.Get() // populates via the synchronous runner

	first := cache.Get()
	second := cache.Get()
	if !reflect.DeepEqual(first, sampler.samples) {
		t.Fatalf("fresh read: got %v, want %v", first, sampler.samples)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two reads within the TTL must return identical data")
	}
	if runner.submissions != 1 {
		t.Fatalf("fresh reads must not trigger refreshes, got %d submissions", runner.submissions)
	}
}

func TestCache_ExpiredReadServesStaleAndRefreshesOnce(t *testing.T) {
	sampler := &fakeSampler{samples: map[string][]time.Duration{"a@corp.com": {time.Hour}}}
	runner := &syncRunner{}
	cache, now := newTestCache(sampler, runner, 5*time.Minute)

	cache.Get() // initial refresh at T0
	stale := sampler.samples
	sampler.samples = map[string][]time.Duration{"b@corp.com": {time.Minute}}

	*now = now.Add(10 * time.Minute)

	got := cache.Get()
	if !reflect.DeepEqual(got, stale) {
		t.Fatalf("expired read must serve the previous data synchronously, got %v", got)
	}
	if runner.submissions != 2 {
		t.Fatalf("expired read must trigger exactly one refresh, got %d total submissions", runner.submissions)
	}

	// The background refresh completed (synchronously here); next read sees
	// the replaced entry as a whole.
	if got := cache.Get(); !reflect.DeepEqual(got, sampler.samples) {
		t.Fatalf("post-refresh read: got %v, want %v", got, sampler.samples)
	}
}

func TestCache_FailedRefreshKeepsPreviousEntry(t *testing.T) {
	sampler := &fakeSampler{samples: map[string][]time.Duration{"a@corp.com": {time.Hour}}}
	runner := &syncRunner{}
	cache, now := newTestCache(sampler, runner, 5*time.Minute)

	cache.Get() // initial refresh
	good := sampler.samples
	sampler.err = errors.New("upstream down")

	*now = now.Add(10 * time.Minute)

	if got := cache.Get(); !reflect.DeepEqual(got, good) {
		t.Fatalf("failed refresh must not clobber the entry, got %v", got)
	}
	if got := cache.Get(); !reflect.DeepEqual(got, good) {
		t.Fatalf("entry must survive repeated failed refreshes, got %v", got)
	}
}

func TestCache_DroppedSubmissionStillServesStale(t *testing.T) {
	sampler := &fakeSampler{samples: map[string][]time.Duration{"a@corp.com": {time.Hour}}}
	runner := &syncRunner{}
	cache, now := newTestCache(sampler, runner, 5*time.Minute)

	cache.Get()
	*now = now.Add(10 * time.Minute)

	cache.runner = rejectingRunner{}
	if got := cache.Get(); len(got) != 1 {
		t.Fatalf("stale data must still be served when the queue is full, got %v", got)
	}
}

type rejectingRunner struct{}

func (rejectingRunner) Submit(string, func() error) bool { return false }
