package domain

import "time"

// TicketStatus enumerates lifecycle states reported by the upstream tracker.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Active reports whether the ticket still counts against SLA targets.
func (s TicketStatus) Active() bool {
	switch s {
	case TicketStatusNew, TicketStatusOpen, TicketStatusInProgress, TicketStatusPending:
		return true
	}
	return false
}

// Terminal reports whether the ticket has reached a final state.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency tiers.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityNormal TicketPriority = "NORMAL"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is a read-only view of an upstream work item.
type Ticket struct {
	ID         int64
	Project    string
	Subject    string
	Status     TicketStatus
	Priority   TicketPriority
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
	Assignee   *Member
	Requester  *Member
}
