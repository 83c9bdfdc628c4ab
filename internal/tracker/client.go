package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/sla-dashboard/internal/domain"
	apperrors "github.com/spec-kit/sla-dashboard/pkg/util/errorutil"
)

// Client talks to the upstream issue-tracker REST API.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// NewClient creates a tracker API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type memberPayload struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type ticketPayload struct {
	ID         int64          `json:"id"`
	Project    string         `json:"project"`
	Subject    string         `json:"subject"`
	Status     string         `json:"status"`
	Priority   string         `json:"priority"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	Assignee   *memberPayload `json:"assignee,omitempty"`
	Requester  *memberPayload `json:"requester,omitempty"`
}

type commentPayload struct {
	ID        int64         `json:"id"`
	Author    memberPayload `json:"author"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

// ListTickets fetches the full ticket set.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	url := fmt.Sprintf("%s/api/v1/tickets", c.baseURL)

	var result struct {
		Tickets []ticketPayload `json:"tickets"`
	}
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, 0, len(result.Tickets))
	for _, p := range result.Tickets {
		tickets = append(tickets, toTicket(p))
	}
	return tickets, nil
}

// ListComments fetches the comment thread of one ticket.
func (c *Client) ListComments(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	url := fmt.Sprintf("%s/api/v1/tickets/%d/comments", c.baseURL, ticketID)

	var result struct {
		Comments []commentPayload `json:"comments"`
	}
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, err
	}

	comments := make([]domain.Comment, 0, len(result.Comments))
	for _, p := range result.Comments {
		comments = append(comments, domain.Comment{
			ID:        p.ID,
			TicketID:  ticketID,
			Author:    toMember(p.Author),
			Content:   p.Content,
			CreatedAt: p.CreatedAt,
		})
	}
	return comments, nil
}

// ListMembers fetches the member directory.
func (c *Client) ListMembers(ctx context.Context) ([]domain.Member, error) {
	url := fmt.Sprintf("%s/api/v1/members", c.baseURL)

	var result struct {
		Members []memberPayload `json:"members"`
	}
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, err
	}

	members := make([]domain.Member, 0, len(result.Members))
	for _, p := range result.Members {
		members = append(members, toMember(p))
	}
	return members, nil
}

// Ping verifies the tracker is reachable and accepts our credentials.
func (c *Client) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/v1/members", c.baseURL)
	var result struct {
		Members []memberPayload `json:"members"`
	}
	return c.getJSON(ctx, url, &result)
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.NewUpstreamUnavailable("build tracker request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUpstreamUnavailable("tracker request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.NewUpstreamAuth(fmt.Sprintf("tracker rejected credentials: status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return apperrors.NewUpstreamUnavailable(fmt.Sprintf("tracker returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewUpstreamUnavailable("decode tracker response", err)
	}
	return nil
}

func toTicket(p ticketPayload) domain.Ticket {
	t := domain.Ticket{
		ID:         p.ID,
		Project:    p.Project,
		Subject:    p.Subject,
		Status:     domain.TicketStatus(p.Status),
		Priority:   domain.TicketPriority(p.Priority),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		ResolvedAt: p.ResolvedAt,
	}
	if p.Assignee != nil {
		assignee := toMember(*p.Assignee)
		t.Assignee = &assignee
	}
	if p.Requester != nil {
		requester := toMember(*p.Requester)
		t.Requester = &requester
	}
	return t
}

func toMember(p memberPayload) domain.Member {
	return domain.Member{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
	}
}
