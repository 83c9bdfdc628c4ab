package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/config"
	"github.com/spec-kit/sla-dashboard/internal/domain"
	"github.com/spec-kit/sla-dashboard/internal/observability"
)

// ResponseSampler estimates first-response latency per assignee. The tracker
// does not expose first-response time directly, so we approximate it as the
// gap between ticket creation and the first comment by an internal user who
// is not the requester.
type ResponseSampler struct {
	source         TicketSource
	cfg            config.SamplerConfig
	internalDomain string
	logger         *zap.Logger
	metrics        *observability.Metrics
	now            func() time.Time
}

// NewResponseSampler constructs the sampler. Non-positive config values fall
// back to the standard bounds (batch 10, lookback 30 days, cap 100).
func NewResponseSampler(source TicketSource, cfg config.SamplerConfig, internalDomain string, logger *zap.Logger, metrics *observability.Metrics) *ResponseSampler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 30
	}
	if cfg.MaxTickets <= 0 {
		cfg.MaxTickets = 100
	}
	return &ResponseSampler{
		source:         source,
		cfg:            cfg,
		internalDomain: strings.ToLower(internalDomain),
		logger:         logger,
		metrics:        metrics,
		now:            time.Now,
	}
}

// Sample fetches the ticket set, selects recent assigned tickets, and
// gathers first-response latencies keyed by normalized assignee email.
// Comment fetches run in fixed-size batches: each batch settles before the
// next starts, so in-flight upstream requests never exceed the batch size.
// A single ticket's fetch failure is logged and contributes no sample.
func (s *ResponseSampler) Sample(ctx context.Context) (map[string][]time.Duration, error) {
	tickets, err := s.source.ListTickets(ctx)
	if err != nil {
		return nil, err
	}

	candidates := s.selectCandidates(tickets)
	samples := make(map[string][]time.Duration)

	type result struct {
		key     string
		latency time.Duration
		ok      bool
	}

	for start := 0; start < len(candidates); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]
		results := make([]result, len(batch))

		var wg sync.WaitGroup
		for i, t := range batch {
			wg.Add(1)
			go func(i int, t domain.Ticket) {
				defer wg.Done()
				comments, err := s.source.ListComments(ctx, t.ID)
				if err != nil {
					s.metrics.RecordCommentFetch(false)
					s.logger.Warn("comment fetch failed, skipping sample",
						zap.Int64("ticket_id", t.ID), zap.Error(err))
					return
				}
				s.metrics.RecordCommentFetch(true)
				if latency, ok := s.firstResponseTime(t, comments); ok {
					results[i] = result{key: t.Assignee.EmailKey(), latency: latency, ok: true}
				}
			}(i, t)
		}
		wg.Wait()

		for _, r := range results {
			if r.ok {
				samples[r.key] = append(samples[r.key], r.latency)
			}
		}
	}

	return samples, nil
}

// selectCandidates keeps tickets created within the lookback window that
// have an assignee, most recent first, capped to bound upstream fan-out.
func (s *ResponseSampler) selectCandidates(tickets []domain.Ticket) []domain.Ticket {
	cutoff := s.now().AddDate(0, 0, -s.cfg.LookbackDays)

	candidates := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.Assignee == nil || t.Assignee.Email == "" {
			continue
		}
		if t.CreatedAt.Before(cutoff) {
			continue
		}
		candidates = append(candidates, t)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	if len(candidates) > s.cfg.MaxTickets {
		candidates = candidates[:s.cfg.MaxTickets]
	}
	return candidates
}

// firstResponseTime finds the earliest comment by an internal author other
// than the requester with strictly positive elapsed time since creation.
func (s *ResponseSampler) firstResponseTime(t domain.Ticket, comments []domain.Comment) (time.Duration, bool) {
	ordered := make([]domain.Comment, len(comments))
	copy(ordered, comments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	for _, c := range ordered {
		if domain.EmailDomain(c.Author.Email) != s.internalDomain {
			continue
		}
		if t.Requester != nil && strings.EqualFold(c.Author.Email, t.Requester.Email) {
			continue
		}
		elapsed := c.CreatedAt.Sub(t.CreatedAt)
		if elapsed <= 0 {
			continue
		}
		return elapsed, true
	}
	return 0, false
}
