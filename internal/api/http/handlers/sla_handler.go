package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-dashboard/internal/api/dto"
	"github.com/spec-kit/sla-dashboard/internal/domain"
	"github.com/spec-kit/sla-dashboard/internal/service"
)

// SLAHandler serves the SLA dashboard endpoint.
type SLAHandler struct {
	service *service.SLAService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{service: slaService}
}

// Dashboard GET /api/dashboard/sla.
func (h *SLAHandler) Dashboard(c *fiber.Ctx) error {
	now := time.Now()
	statuses, summary, err := h.service.Dashboard(c.UserContext(), now)
	if err != nil {
		return err
	}

	items := make([]dto.SLATicketStatus, 0, len(statuses))
	for _, s := range statuses {
		items = append(items, slaTicketStatus(s))
	}
	return c.JSON(fiber.Map{"data": dto.SLADashboardResponse{
		Summary: dto.SLASummary{
			Breached: summary.Breached,
			AtRisk:   summary.AtRisk,
			OnTrack:  summary.OnTrack,
		},
		Tickets:     items,
		GeneratedAt: now,
	}})
}

func slaTicketStatus(s domain.TicketSLAStatus) dto.SLATicketStatus {
	return dto.SLATicketStatus{
		Ticket:             ticketRef(s.Ticket),
		RiskStatus:         s.RiskStatus,
		ResponseDeadline:   s.ResponseDeadline,
		ResolutionDeadline: s.ResolutionDeadline,
		TimeRemainingMs:    s.TimeRemaining.Milliseconds(),
		TimeRemaining:      service.FormatRemaining(s.TimeRemaining),
		PercentRemaining:   s.PercentRemaining,
		ResponseBreached:   s.ResponseBreached,
		ResolutionBreached: s.ResolutionBreached,
	}
}

func ticketRef(t domain.Ticket) dto.TicketRef {
	ref := dto.TicketRef{
		ID:        t.ID,
		Project:   t.Project,
		Subject:   t.Subject,
		Status:    t.Status,
		Priority:  t.Priority,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Assignee != nil {
		m := memberRef(*t.Assignee)
		ref.Assignee = &m
	}
	if t.Requester != nil {
		m := memberRef(*t.Requester)
		ref.Requester = &m
	}
	return ref
}

func memberRef(m domain.Member) dto.MemberRef {
	return dto.MemberRef{ID: m.ID, DisplayName: m.DisplayName, Email: m.Email}
}
