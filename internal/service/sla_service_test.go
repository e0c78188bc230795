package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
)

func testPolicy() *domain.SLAPolicy {
	return &domain.SLAPolicy{
		ID:                  "sla-1",
		Priority:            domain.TicketPriorityNormal,
		FirstResponseTarget: 30,
		ResolutionTarget:    240,
		IsActive:            true,
	}
}

func TestIsBreached(t *testing.T) {
	policy := testPolicy()
	createdAt := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	responded := createdAt.Add(10 * time.Minute)
	lateResponse := createdAt.Add(45 * time.Minute)

	cases := []struct {
		name   string
		ticket domain.Ticket
		now    time.Time
		want   bool
	}{
		{
			name:   "within both targets",
			ticket: domain.Ticket{CreatedAt: createdAt},
			now:    createdAt.Add(20 * time.Minute),
			want:   false,
		},
		{
			name:   "no response past first target",
			ticket: domain.Ticket{CreatedAt: createdAt},
			now:    createdAt.Add(31 * time.Minute),
			want:   true,
		},
		{
			name:   "timely response freezes first clock",
			ticket: domain.Ticket{CreatedAt: createdAt, FirstResponseAt: &responded},
			now:    createdAt.Add(2 * time.Hour),
			want:   false,
		},
		{
			name:   "late response stays breached",
			ticket: domain.Ticket{CreatedAt: createdAt, FirstResponseAt: &lateResponse},
			now:    createdAt.Add(2 * time.Hour),
			want:   true,
		},
		{
			name:   "unresolved past resolution target",
			ticket: domain.Ticket{CreatedAt: createdAt, FirstResponseAt: &responded},
			now:    createdAt.Add(5 * time.Hour),
			want:   true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsBreached(&tc.ticket, policy, tc.now); got != tc.want {
				t.Errorf("IsBreached = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSweepLatchesBreaches(t *testing.T) {
	tickets := newFakeTicketRepo()
	policies := newFakeSLARepo()
	dispatcher := &recordingDispatcher{}
	policies.policies["sla-1"] = *testPolicy()

	svc := NewSLAService(tickets, policies, dispatcher, zap.NewNop())
	ctx := context.Background()

	policyID := "sla-1"
	overdue := &domain.Ticket{
		Number:      "TK-202609-0001",
		Status:      domain.TicketStatusOpen,
		SLAPolicyID: &policyID,
	}
	if err := tickets.Create(ctx, overdue); err != nil {
		t.Fatalf("seed overdue: %v", err)
	}
	tickets.setCreatedAt(overdue.ID, time.Now().Add(-2*time.Hour))

	fresh := &domain.Ticket{
		Number:      "TK-202609-0002",
		Status:      domain.TicketStatusOpen,
		SLAPolicyID: &policyID,
	}
	if err := tickets.Create(ctx, fresh); err != nil {
		t.Fatalf("seed fresh: %v", err)
	}

	breached, err := svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if breached != 1 {
		t.Fatalf("breached = %d, want 1", breached)
	}

	got, _ := tickets.GetByID(ctx, overdue.ID)
	if !got.SLABreached {
		t.Error("overdue ticket not latched")
	}
	got, _ = tickets.GetByID(ctx, fresh.ID)
	if got.SLABreached {
		t.Error("fresh ticket incorrectly latched")
	}
	if published := dispatcher.byType(events.EventSLABreached); len(published) != 1 {
		t.Errorf("sla_breached events = %d, want 1", len(published))
	}

	// A second pass finds nothing new; the flag never resets.
	breached, err = svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if breached != 0 {
		t.Errorf("second sweep latched %d, want 0", breached)
	}
}
