package domain

// MemberStatus classifies a member's current workload.
type MemberStatus string

const (
	MemberStatusOnTrack        MemberStatus = "On Track"
	MemberStatusBehind         MemberStatus = "Behind"
	MemberStatusNeedsAttention MemberStatus = "Needs Attention"
)

// TeamThresholds configure the workload levels that move a member from
// On Track to Behind or Needs Attention.
type TeamThresholds struct {
	NeedsAttentionPending  int
	NeedsAttentionAssigned int
	BehindPending          int
	BehindAssigned         int
}

// DefaultTeamThresholds returns the built-in classification thresholds.
func DefaultTeamThresholds() TeamThresholds {
	return TeamThresholds{
		NeedsAttentionPending:  5,
		NeedsAttentionAssigned: 15,
		BehindPending:          2,
		BehindAssigned:         10,
	}
}

// MemberStats aggregates one member's workload and performance. Built fresh
// per request and discarded after serialization.
type MemberStats struct {
	Member                  Member
	Status                  MemberStatus
	TicketsAssigned         int
	TicketsResolved         int
	WeeklyResolutions       int
	PreviousWeekResolutions int
	WeeklyTrend             string
	PendingTickets          int
	AvgResponseTime         string
	AvgResolutionTime       string
}

// TeamSummary holds team-wide counts for the dashboard header.
type TeamSummary struct {
	MemberCount           int
	OpenTickets           int
	InProgressTickets     int
	NeedsAttentionTickets int
}
