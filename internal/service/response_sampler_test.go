package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/config"
	"github.com/spec-kit/sla-dashboard/internal/domain"
	"github.com/spec-kit/sla-dashboard/internal/observability"
)

type fakeSource struct {
	tickets    []domain.Ticket
	members    []domain.Member
	comments   map[int64][]domain.Comment
	commentErr map[int64]error
	ticketsErr error
	membersErr error

	fetchDelay time.Duration

	mu          sync.Mutex
	fetchedIDs  []int64
	inFlight    int
	maxInFlight int
}

func (f *fakeSource) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	if f.ticketsErr != nil {
		return nil, f.ticketsErr
	}
	return f.tickets, nil
}

func (f *fakeSource) ListMembers(ctx context.Context) ([]domain.Member, error) {
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return f.members, nil
}

func (f *fakeSource) ListComments(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	f.mu.Lock()
	f.fetchedIDs = append(f.fetchedIDs, ticketID)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	if f.fetchDelay > 0 {
		time.Sleep(f.fetchDelay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if err, ok := f.commentErr[ticketID]; ok {
		return nil, err
	}
	return f.comments[ticketID], nil
}

func newTestSampler(source *fakeSource, cfg config.SamplerConfig, now time.Time) *ResponseSampler {
	s := NewResponseSampler(source, cfg, "corp.com", zap.NewNop(), observability.NewMetrics("sampler-test"))
	s.now = func() time.Time { return now }
	return s
}

func assignedTicket(id int64, createdAt time.Time, assigneeEmail string) domain.Ticket {
	return domain.Ticket{
		ID:        id,
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityNormal,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		Assignee:  &domain.Member{ID: id, Email: assigneeEmail},
		Requester: &domain.Member{ID: 9000 + id, Email: fmt.Sprintf("customer%d@example.org", id)},
	}
}

func TestSampler_ConcurrencyNeverExceedsBatchSize(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{comments: map[int64][]domain.Comment{}, fetchDelay: 2 * time.Millisecond}
	for i := int64(1); i <= 25; i++ {
		source.tickets = append(source.tickets, assignedTicket(i, now.Add(-time.Duration(i)*time.Hour), "agent@corp.com"))
	}

	sampler := newTestSampler(source, config.SamplerConfig{BatchSize: 10, LookbackDays: 30, MaxTickets: 100}, now)
	if _, err := sampler.Sample(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(source.fetchedIDs) != 25 {
		t.Errorf("fetch count: got %d, want 25", len(source.fetchedIDs))
	}
	if source.maxInFlight > 10 {
		t.Errorf("max in-flight fetches: got %d, want <= 10", source.maxInFlight)
	}
}

func TestSampler_SelectionLookbackAndCap(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{comments: map[int64][]domain.Comment{}}

	// 7 recent assigned tickets, one too old, one unassigned.
	for i := int64(1); i <= 7; i++ {
		source.tickets = append(source.tickets, assignedTicket(i, now.Add(-time.Duration(i)*24*time.Hour), "agent@corp.com"))
	}
	source.tickets = append(source.tickets, assignedTicket(50, now.AddDate(0, 0, -31), "agent@corp.com"))
	old := assignedTicket(51, now.Add(-time.Hour), "")
	old.Assignee = nil
	source.tickets = append(source.tickets, old)

	sampler := newTestSampler(source, config.SamplerConfig{BatchSize: 10, LookbackDays: 30, MaxTickets: 5}, now)
	if _, err := sampler.Sample(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Capped at the 5 most recently created candidates. Completion order
	// within a batch is unspecified, so compare as a set.
	want := map[int64]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	if len(source.fetchedIDs) != len(want) {
		t.Fatalf("fetched %v, want ids 1-5", source.fetchedIDs)
	}
	for _, id := range source.fetchedIDs {
		if !want[id] {
			t.Fatalf("fetched %v, want ids 1-5", source.fetchedIDs)
		}
	}
}

func TestSampler_FirstQualifyingComment(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	created := now.Add(-48 * time.Hour)

	ticket := assignedTicket(1, created, "Agent@Corp.COM")
	ticket.Requester = &domain.Member{ID: 900, Email: "insider@corp.com"}

	source := &fakeSource{
		tickets: []domain.Ticket{ticket},
		comments: map[int64][]domain.Comment{
			1: {
				// Unsorted on purpose; the sampler orders by creation time.
				{ID: 4, Author: domain.Member{Email: "second@corp.com"}, CreatedAt: created.Add(3 * time.Hour)},
				{ID: 1, Author: domain.Member{Email: "bot@corp.com"}, CreatedAt: created}, // zero elapsed
				{ID: 2, Author: domain.Member{Email: "customer@example.org"}, CreatedAt: created.Add(30 * time.Minute)},
				{ID: 3, Author: domain.Member{Email: "INSIDER@corp.com"}, CreatedAt: created.Add(time.Hour)}, // requester
			},
		},
	}

	sampler := newTestSampler(source, config.SamplerConfig{BatchSize: 10, LookbackDays: 30, MaxTickets: 100}, now)
	samples, err := sampler.Sample(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := samples["agent@corp.com"]
	if !ok {
		t.Fatalf("expected sample under normalized assignee email, got %v", samples)
	}
	if len(got) != 1 || got[0] != 3*time.Hour {
		t.Fatalf("sample: got %v, want [3h]", got)
	}
}

func TestSampler_FetchFailureSkipsTicketOnly(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	created := now.Add(-24 * time.Hour)

	source := &fakeSource{
		tickets: []domain.Ticket{
			assignedTicket(1, created, "a@corp.com"),
			assignedTicket(2, created.Add(time.Hour), "b@corp.com"),
		},
		comments: map[int64][]domain.Comment{
			1: {{Author: domain.Member{Email: "a@corp.com"}, CreatedAt: created.Add(2 * time.Hour)}},
		},
		commentErr: map[int64]error{2: errors.New("boom")},
	}

	sampler := newTestSampler(source, config.SamplerConfig{BatchSize: 10, LookbackDays: 30, MaxTickets: 100}, now)
	samples, err := sampler.Sample(context.Background())
	if err != nil {
		t.Fatalf("batch must tolerate per-ticket failure, got %v", err)
	}

	if _, ok := samples["a@corp.com"]; !ok {
		t.Error("expected sample for a@corp.com")
	}
	if _, ok := samples["b@corp.com"]; ok {
		t.Error("failed fetch must contribute no sample, not an empty entry")
	}
}

func TestSampler_TicketListErrorPropagates(t *testing.T) {
	source := &fakeSource{ticketsErr: errors.New("upstream down")}
	sampler := newTestSampler(source, config.SamplerConfig{}, time.Now())

	if _, err := sampler.Sample(context.Background()); err == nil {
		t.Fatal("expected error when the ticket list cannot be fetched")
	}
}
