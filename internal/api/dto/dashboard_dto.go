package dto

import (
	"time"

	"github.com/spec-kit/sla-dashboard/internal/domain"
)

// MemberRef identifies a tracker account in responses.
type MemberRef struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// TicketRef is the ticket subset embedded in dashboard entries.
type TicketRef struct {
	ID        int64                 `json:"id"`
	Project   string                `json:"project"`
	Subject   string                `json:"subject"`
	Status    domain.TicketStatus   `json:"status"`
	Priority  domain.TicketPriority `json:"priority"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Assignee  *MemberRef            `json:"assignee,omitempty"`
	Requester *MemberRef            `json:"requester,omitempty"`
}

// SLATicketStatus is one evaluated ticket on the SLA dashboard.
type SLATicketStatus struct {
	Ticket             TicketRef         `json:"ticket"`
	RiskStatus         domain.RiskStatus `json:"risk_status"`
	ResponseDeadline   time.Time         `json:"response_deadline"`
	ResolutionDeadline time.Time         `json:"resolution_deadline"`
	TimeRemainingMs    int64             `json:"time_remaining_ms"`
	TimeRemaining      string            `json:"time_remaining"`
	PercentRemaining   float64           `json:"percent_remaining"`
	ResponseBreached   bool              `json:"response_breached"`
	ResolutionBreached bool              `json:"resolution_breached"`
}

// SLASummary carries classification counts for the dashboard header.
type SLASummary struct {
	Breached int `json:"breached"`
	AtRisk   int `json:"at_risk"`
	OnTrack  int `json:"on_track"`
}

// SLADashboardResponse is the full SLA dashboard payload.
type SLADashboardResponse struct {
	Summary     SLASummary        `json:"summary"`
	Tickets     []SLATicketStatus `json:"tickets"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// TeamMemberStats is one member row on the team dashboard.
type TeamMemberStats struct {
	Member            MemberRef           `json:"member"`
	Status            domain.MemberStatus `json:"status"`
	TicketsAssigned   int                 `json:"tickets_assigned"`
	TicketsResolved   int                 `json:"tickets_resolved"`
	WeeklyResolutions int                 `json:"weekly_resolutions"`
	WeeklyTrend       string              `json:"weekly_trend,omitempty"`
	PendingTickets    int                 `json:"pending_tickets"`
	AvgResponseTime   string              `json:"avg_response_time"`
	AvgResolutionTime string              `json:"avg_resolution_time"`
}

// TeamSummary carries team-wide counts for the dashboard header.
type TeamSummary struct {
	MemberCount           int `json:"member_count"`
	OpenTickets           int `json:"open_tickets"`
	InProgressTickets     int `json:"in_progress_tickets"`
	NeedsAttentionTickets int `json:"needs_attention_tickets"`
}

// TeamDashboardResponse is the full team dashboard payload.
type TeamDashboardResponse struct {
	Summary     TeamSummary       `json:"summary"`
	Members     []TeamMemberStats `json:"members"`
	GeneratedAt time.Time         `json:"generated_at"`
}
