package service

import (
	"context"

	"github.com/spec-kit/sla-dashboard/internal/domain"
)

// TicketSource is the upstream issue-tracker collaborator the analytics
// layer consumes. Implementations fetch live data; the core never caches
// tickets itself.
type TicketSource interface {
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	ListComments(ctx context.Context, ticketID int64) ([]domain.Comment, error)
	ListMembers(ctx context.Context) ([]domain.Member, error)
}

// TaskRunner schedules fire-and-forget background work. Submit reports
// whether the task was accepted.
type TaskRunner interface {
	Submit(name string, task func() error) bool
}
