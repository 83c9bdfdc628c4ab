package domain

import "time"

// SLATarget holds the response and resolution targets for one priority.
type SLATarget struct {
	ResponseTimeMinutes   int
	ResolutionTimeMinutes int
}

// SLAPolicy maps ticket priority to its SLA targets.
type SLAPolicy map[TicketPriority]SLATarget

// AtRiskThresholdPercent is the remaining-window percentage at or below
// which an unbreached ticket is classified at-risk.
const AtRiskThresholdPercent = 25.0

// DefaultSLAPolicy returns the built-in priority targets used when no
// override is configured.
func DefaultSLAPolicy() SLAPolicy {
	return SLAPolicy{
		TicketPriorityUrgent: {ResponseTimeMinutes: 60, ResolutionTimeMinutes: 240},
		TicketPriorityHigh:   {ResponseTimeMinutes: 120, ResolutionTimeMinutes: 480},
		TicketPriorityNormal: {ResponseTimeMinutes: 480, ResolutionTimeMinutes: 1440},
		TicketPriorityLow:    {ResponseTimeMinutes: 1440, ResolutionTimeMinutes: 4320},
	}
}

// RiskStatus classifies a ticket's position relative to its SLA window.
type RiskStatus string

const (
	RiskOnTrack  RiskStatus = "on-track"
	RiskAtRisk   RiskStatus = "at-risk"
	RiskBreached RiskStatus = "breached"
)

// TicketSLAStatus is the per-ticket SLA evaluation result. It is derived
// fresh on every evaluation against a caller-supplied clock and never
// persisted.
type TicketSLAStatus struct {
	Ticket             Ticket
	RiskStatus         RiskStatus
	ResponseDeadline   time.Time
	ResolutionDeadline time.Time
	TimeRemaining      time.Duration
	PercentRemaining   float64
	ResponseBreached   bool
	ResolutionBreached bool
}

// SLASummary holds classification counts across an evaluated ticket set.
type SLASummary struct {
	Breached int
	AtRisk   int
	OnTrack  int
}
