package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/domain"
	apperrors "github.com/spec-kit/sla-dashboard/pkg/util/errorutil"
)

// SLAService evaluates open tickets against the configured SLA policy.
type SLAService struct {
	source TicketSource
	policy domain.SLAPolicy
	logger *zap.Logger
}

// NewSLAService constructs the service.
func NewSLAService(source TicketSource, policy domain.SLAPolicy, logger *zap.Logger) *SLAService {
	return &SLAService{source: source, policy: policy, logger: logger}
}

type policyOverrideEntry struct {
	ResponseTimeMinutes   int `json:"response_time_minutes"`
	ResolutionTimeMinutes int `json:"resolution_time_minutes"`
}

// ResolvePolicy parses the configured SLA policy override and merges valid
// entries over the built-in defaults. A malformed override is never fatal:
// it logs a warning and the defaults win.
func ResolvePolicy(raw string, logger *zap.Logger) domain.SLAPolicy {
	policy := domain.DefaultSLAPolicy()
	if raw == "" {
		return policy
	}

	var override map[string]policyOverrideEntry
	if err := json.Unmarshal([]byte(raw), &override); err != nil {
		logger.Warn("invalid SLA policy override, using defaults", zap.Error(err))
		return policy
	}

	for key, entry := range override {
		priority := domain.TicketPriority(key)
		if _, known := policy[priority]; !known {
			logger.Warn("unknown priority in SLA policy override", zap.String("priority", key))
			continue
		}
		if entry.ResponseTimeMinutes <= 0 || entry.ResolutionTimeMinutes <= 0 {
			logger.Warn("non-positive SLA target in override", zap.String("priority", key))
			continue
		}
		policy[priority] = domain.SLATarget{
			ResponseTimeMinutes:   entry.ResponseTimeMinutes,
			ResolutionTimeMinutes: entry.ResolutionTimeMinutes,
		}
	}
	return policy
}

// Evaluate computes the SLA status of one ticket at the supplied instant.
// A priority absent from the policy is an invariant violation and fails the
// computation rather than being silently defaulted.
func Evaluate(t domain.Ticket, policy domain.SLAPolicy, now time.Time) (domain.TicketSLAStatus, error) {
	target, ok := policy[t.Priority]
	if !ok {
		return domain.TicketSLAStatus{}, apperrors.NewInvariantViolation(
			"no SLA target for ticket priority",
			map[string]any{"ticket_id": t.ID, "priority": string(t.Priority)},
		)
	}

	responseDeadline := t.CreatedAt.Add(time.Duration(target.ResponseTimeMinutes) * time.Minute)
	resolutionDeadline := t.CreatedAt.Add(time.Duration(target.ResolutionTimeMinutes) * time.Minute)

	window := time.Duration(target.ResolutionTimeMinutes) * time.Minute
	elapsed := now.Sub(t.CreatedAt)
	percent := (1 - elapsed.Minutes()/window.Minutes()) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	status := domain.TicketSLAStatus{
		Ticket:             t,
		ResponseDeadline:   responseDeadline,
		ResolutionDeadline: resolutionDeadline,
		TimeRemaining:      resolutionDeadline.Sub(now),
		PercentRemaining:   percent,
		ResponseBreached:   now.After(responseDeadline),
		ResolutionBreached: now.After(resolutionDeadline),
	}

	switch {
	case status.ResolutionBreached:
		status.RiskStatus = domain.RiskBreached
	case percent <= domain.AtRiskThresholdPercent:
		status.RiskStatus = domain.RiskAtRisk
	default:
		status.RiskStatus = domain.RiskOnTrack
	}
	return status, nil
}

// FilterActive keeps the tickets still counting against SLA targets.
func FilterActive(tickets []domain.Ticket) []domain.Ticket {
	active := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.Status.Active() {
			active = append(active, t)
		}
	}
	return active
}

var riskRank = map[domain.RiskStatus]int{
	domain.RiskBreached: 0,
	domain.RiskAtRisk:   1,
	domain.RiskOnTrack:  2,
}

// SortByUrgency returns a stably sorted copy: breached before at-risk before
// on-track, and within a tier ascending by signed time remaining, so the
// most overdue ticket sorts first.
func SortByUrgency(statuses []domain.TicketSLAStatus) []domain.TicketSLAStatus {
	sorted := make([]domain.TicketSLAStatus, len(statuses))
	copy(sorted, statuses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if riskRank[sorted[i].RiskStatus] != riskRank[sorted[j].RiskStatus] {
			return riskRank[sorted[i].RiskStatus] < riskRank[sorted[j].RiskStatus]
		}
		return sorted[i].TimeRemaining < sorted[j].TimeRemaining
	})
	return sorted
}

// Summarize counts statuses by risk classification.
func Summarize(statuses []domain.TicketSLAStatus) domain.SLASummary {
	var summary domain.SLASummary
	for _, s := range statuses {
		switch s.RiskStatus {
		case domain.RiskBreached:
			summary.Breached++
		case domain.RiskAtRisk:
			summary.AtRisk++
		default:
			summary.OnTrack++
		}
	}
	return summary
}

// Dashboard fetches the ticket set and produces the ranked SLA view.
func (s *SLAService) Dashboard(ctx context.Context, now time.Time) ([]domain.TicketSLAStatus, domain.SLASummary, error) {
	tickets, err := s.source.ListTickets(ctx)
	if err != nil {
		return nil, domain.SLASummary{}, err
	}

	active := FilterActive(tickets)
	statuses := make([]domain.TicketSLAStatus, 0, len(active))
	for _, t := range active {
		status, err := Evaluate(t, s.policy, now)
		if err != nil {
			return nil, domain.SLASummary{}, err
		}
		statuses = append(statuses, status)
	}

	sorted := SortByUrgency(statuses)
	return sorted, Summarize(sorted), nil
}
