package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-dashboard/internal/api/dto"
	"github.com/spec-kit/sla-dashboard/internal/service"
)

// TeamHandler serves the team analytics endpoint.
type TeamHandler struct {
	service *service.TeamService
}

// NewTeamHandler constructs handler.
func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{service: teamService}
}

// Dashboard GET /api/dashboard/team.
func (h *TeamHandler) Dashboard(c *fiber.Ctx) error {
	now := time.Now()
	stats, summary, err := h.service.Dashboard(c.UserContext(), now)
	if err != nil {
		return err
	}

	members := make([]dto.TeamMemberStats, 0, len(stats))
	for _, s := range stats {
		members = append(members, dto.TeamMemberStats{
			Member:            memberRef(s.Member),
			Status:            s.Status,
			TicketsAssigned:   s.TicketsAssigned,
			TicketsResolved:   s.TicketsResolved,
			WeeklyResolutions: s.WeeklyResolutions,
			WeeklyTrend:       s.WeeklyTrend,
			PendingTickets:    s.PendingTickets,
			AvgResponseTime:   s.AvgResponseTime,
			AvgResolutionTime: s.AvgResolutionTime,
		})
	}
	return c.JSON(fiber.Map{"data": dto.TeamDashboardResponse{
		Summary: dto.TeamSummary{
			MemberCount:           summary.MemberCount,
			OpenTickets:           summary.OpenTickets,
			InProgressTickets:     summary.InProgressTickets,
			NeedsAttentionTickets: summary.NeedsAttentionTickets,
		},
		Members:     members,
		GeneratedAt: now,
	}})
}
