package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/domain"
)

// ResponseTimeProvider supplies cached per-member response-time samples.
type ResponseTimeProvider interface {
	Get() map[string][]time.Duration
}

// TeamService builds the per-member workload dashboard.
type TeamService struct {
	source         TicketSource
	responseTimes  ResponseTimeProvider
	thresholds     domain.TeamThresholds
	internalDomain string
	logger         *zap.Logger
}

// TeamDependencies bundles collaborators for the team service.
type TeamDependencies struct {
	Source         TicketSource
	ResponseTimes  ResponseTimeProvider
	Thresholds     domain.TeamThresholds
	InternalDomain string
	Logger         *zap.Logger
}

// NewTeamService constructs the service.
func NewTeamService(deps TeamDependencies) *TeamService {
	return &TeamService{
		source:         deps.Source,
		responseTimes:  deps.ResponseTimes,
		thresholds:     deps.Thresholds,
		internalDomain: deps.InternalDomain,
		logger:         deps.Logger,
	}
}

// Dashboard fetches members and tickets and produces per-member statistics
// plus the team-wide summary. Upstream failures fail the whole request;
// missing response-time samples degrade to workload heuristics.
func (s *TeamService) Dashboard(ctx context.Context, now time.Time) ([]domain.MemberStats, domain.TeamSummary, error) {
	members, err := s.source.ListMembers(ctx)
	if err != nil {
		return nil, domain.TeamSummary{}, err
	}
	tickets, err := s.source.ListTickets(ctx)
	if err != nil {
		return nil, domain.TeamSummary{}, err
	}

	samples := s.responseTimes.Get()
	stats := BuildMemberStats(members, tickets, samples, s.thresholds, s.internalDomain, now)
	summary := SummarizeTeam(len(stats), tickets, now)
	return stats, summary, nil
}

type memberAccumulator struct {
	member            domain.Member
	assigned          int
	pending           int
	resolved          int
	weekly            int
	previousWeek      int
	resolutionSamples []time.Duration
}

// BuildMemberStats aggregates tickets into per-member statistics in a single
// pass. Members are deduplicated by id and filtered to the internal email
// domain (an empty internalDomain disables the filter). The result is sorted
// descending by assigned tickets.
func BuildMemberStats(members []domain.Member, tickets []domain.Ticket, samples map[string][]time.Duration, thresholds domain.TeamThresholds, internalDomain string, now time.Time) []domain.MemberStats {
	accumulators := make([]*memberAccumulator, 0, len(members))
	byEmail := make(map[string]*memberAccumulator, len(members))
	seen := make(map[int64]bool, len(members))

	for _, m := range members {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		if internalDomain != "" && domain.EmailDomain(m.Email) != internalDomain {
			continue
		}
		acc := &memberAccumulator{member: m}
		accumulators = append(accumulators, acc)
		byEmail[m.EmailKey()] = acc
	}

	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	for _, t := range tickets {
		if t.Assignee == nil {
			continue
		}
		acc, ok := byEmail[t.Assignee.EmailKey()]
		if !ok {
			continue
		}

		if t.Status.Active() {
			acc.assigned++
			if t.Status == domain.TicketStatusPending {
				acc.pending++
			}
		}

		if t.Status.Terminal() {
			acc.resolved++

			resolvedAt := t.UpdatedAt
			if t.ResolvedAt != nil {
				resolvedAt = *t.ResolvedAt
			}
			if resolvedAt.After(weekAgo) {
				acc.weekly++
			} else if resolvedAt.After(twoWeeksAgo) {
				acc.previousWeek++
			}

			// Resolution latency uses the real resolution timestamp only;
			// updatedAt would misstate the duration.
			if t.ResolvedAt != nil {
				acc.resolutionSamples = append(acc.resolutionSamples, t.ResolvedAt.Sub(t.CreatedAt))
			}
		}
	}

	stats := make([]domain.MemberStats, 0, len(accumulators))
	for _, acc := range accumulators {
		stats = append(stats, domain.MemberStats{
			Member:                  acc.member,
			Status:                  classifyMember(acc.pending, acc.assigned, thresholds),
			TicketsAssigned:         acc.assigned,
			TicketsResolved:         acc.resolved,
			WeeklyResolutions:       acc.weekly,
			PreviousWeekResolutions: acc.previousWeek,
			WeeklyTrend:             trendString(acc.weekly - acc.previousWeek),
			PendingTickets:          acc.pending,
			AvgResponseTime:         averageResponseTime(samples[acc.member.EmailKey()], acc.assigned),
			AvgResolutionTime:       averageResolutionTime(acc.resolutionSamples),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TicketsAssigned > stats[j].TicketsAssigned
	})
	return stats
}

func classifyMember(pending, assigned int, th domain.TeamThresholds) domain.MemberStatus {
	switch {
	case pending > th.NeedsAttentionPending || assigned > th.NeedsAttentionAssigned:
		return domain.MemberStatusNeedsAttention
	case pending > th.BehindPending || assigned > th.BehindAssigned:
		return domain.MemberStatusBehind
	default:
		return domain.MemberStatusOnTrack
	}
}

func trendString(diff int) string {
	if diff == 0 {
		return ""
	}
	return fmt.Sprintf("%+d", diff)
}

// averageResponseTime formats the mean of the measured samples, or falls
// back to a workload-based estimate when no samples exist.
func averageResponseTime(samples []time.Duration, assigned int) string {
	if len(samples) > 0 {
		return FormatAverage(meanDuration(samples))
	}
	switch {
	case assigned > 10:
		return "> 4 hours"
	case assigned > 5:
		return "2-4 hours"
	default:
		return "< 2 hours"
	}
}

func averageResolutionTime(samples []time.Duration) string {
	if len(samples) == 0 {
		return "-"
	}
	return FormatAverage(meanDuration(samples))
}

// SummarizeTeam derives team-wide counts. A ticket needs attention when it
// is unassigned and new or open, or when it is open, in progress, or pending
// and has not been touched in three days or more.
func SummarizeTeam(memberCount int, tickets []domain.Ticket, now time.Time) domain.TeamSummary {
	summary := domain.TeamSummary{MemberCount: memberCount}
	staleCutoff := now.Add(-3 * 24 * time.Hour)

	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			summary.OpenTickets++
		case domain.TicketStatusInProgress:
			summary.InProgressTickets++
		}

		unassignedNew := t.Assignee == nil &&
			(t.Status == domain.TicketStatusNew || t.Status == domain.TicketStatusOpen)
		stale := (t.Status == domain.TicketStatusOpen ||
			t.Status == domain.TicketStatusInProgress ||
			t.Status == domain.TicketStatusPending) &&
			!t.UpdatedAt.After(staleCutoff)
		if unassignedNew || stale {
			summary.NeedsAttentionTickets++
		}
	}
	return summary
}
