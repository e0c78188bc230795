package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// generateTicketNumber produces the next display number in the form
// TK-YYYYMM-NNNN, where NNNN is a 1-based sequence over tickets created the
// same calendar day. Uniqueness is enforced by the storage constraint; see
// createNumberedTicket for the retry.
func generateTicketNumber(ctx context.Context, tickets repository.TicketRepository, now time.Time) (string, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := tickets.CountCreatedBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TK-%04d%02d-%04d", now.Year(), int(now.Month()), count+1), nil
}

// createNumberedTicket assigns a number and inserts the ticket. Two
// concurrent creations can compute the same sequence; the unique constraint
// on the number turns the loser into a retryable conflict, so the number is
// recomputed and the insert attempted once more.
func createNumberedTicket(ctx context.Context, tickets repository.TicketRepository, ticket *domain.Ticket, now time.Time) error {
	for attempt := 0; attempt < 2; attempt++ {
		number, err := generateTicketNumber(ctx, tickets, now)
		if err != nil {
			return err
		}
		ticket.Number = number

		err = tickets.Create(ctx, ticket)
		if err == nil {
			return nil
		}
		if !errorutil.IsUniqueViolation(err) || attempt == 1 {
			return err
		}
	}
	return nil
}
