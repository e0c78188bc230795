package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestGenerateTicketNumberSequencesWithinDay(t *testing.T) {
	tickets := newFakeTicketRepo()
	ctx := context.Background()
	now := time.Date(2026, time.September, 1, 15, 4, 5, 0, time.UTC)

	number, err := generateTicketNumber(ctx, tickets, now)
	if err != nil {
		t.Fatalf("generateTicketNumber: %v", err)
	}
	if number != "TK-202609-0001" {
		t.Errorf("number = %q, want TK-202609-0001", number)
	}

	ticket := &domain.Ticket{Number: number, Status: domain.TicketStatusOpen}
	if err := tickets.Create(ctx, ticket); err != nil {
		t.Fatalf("create: %v", err)
	}
	tickets.setCreatedAt(ticket.ID, now)

	number, err = generateTicketNumber(ctx, tickets, now)
	if err != nil {
		t.Fatalf("second generateTicketNumber: %v", err)
	}
	if number != "TK-202609-0002" {
		t.Errorf("number = %q, want TK-202609-0002", number)
	}
}

func TestGenerateTicketNumberResetsEachDay(t *testing.T) {
	tickets := newFakeTicketRepo()
	ctx := context.Background()
	yesterday := time.Date(2026, time.August, 31, 23, 50, 0, 0, time.UTC)
	today := time.Date(2026, time.September, 1, 0, 10, 0, 0, time.UTC)

	ticket := &domain.Ticket{Number: "TK-202608-0001", Status: domain.TicketStatusOpen}
	if err := tickets.Create(ctx, ticket); err != nil {
		t.Fatalf("create: %v", err)
	}
	tickets.setCreatedAt(ticket.ID, yesterday)

	number, err := generateTicketNumber(ctx, tickets, today)
	if err != nil {
		t.Fatalf("generateTicketNumber: %v", err)
	}
	if number != "TK-202609-0001" {
		t.Errorf("number = %q, want the sequence to restart at 0001", number)
	}
}

func TestCreateNumberedTicketRetriesOnConflict(t *testing.T) {
	tickets := newFakeTicketRepo()
	tickets.createErr = uniqueViolation()

	ticket := &domain.Ticket{Title: "x", Status: domain.TicketStatusOpen}
	if err := createNumberedTicket(context.Background(), tickets, ticket, time.Now()); err != nil {
		t.Fatalf("createNumberedTicket: %v", err)
	}
	if ticket.ID == "" {
		t.Fatal("ticket not created on retry")
	}

	now := time.Now()
	want := fmt.Sprintf("TK-%04d%02d-0001", now.Year(), int(now.Month()))
	if ticket.Number != want {
		t.Errorf("number = %q, want %q", ticket.Number, want)
	}
}

func TestCreateNumberedTicketGivesUpAfterSecondConflict(t *testing.T) {
	tickets := newFakeTicketRepo()
	ctx := context.Background()

	existing := &domain.Ticket{Number: "taken", Status: domain.TicketStatusOpen}
	if err := tickets.Create(ctx, existing); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Force both attempts to collide with the stored number.
	tickets.setCreatedAt(existing.ID, time.Now().AddDate(0, 0, -1))
	now := time.Now()
	first := fmt.Sprintf("TK-%04d%02d-0001", now.Year(), int(now.Month()))
	collide := &domain.Ticket{Number: first, Status: domain.TicketStatusOpen}
	if err := tickets.Create(ctx, collide); err != nil {
		t.Fatalf("seed collision: %v", err)
	}
	tickets.setCreatedAt(collide.ID, now.AddDate(0, 0, -1))

	ticket := &domain.Ticket{Title: "x", Status: domain.TicketStatusOpen}
	if err := createNumberedTicket(ctx, tickets, ticket, now); err == nil {
		t.Fatal("expected conflict error after exhausted retries")
	}
}
