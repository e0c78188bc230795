package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
)

// SLAService evaluates response targets over live tickets. Breach is a
// one-way latch: once set it survives later responses or resolution.
type SLAService struct {
	tickets  repository.TicketRepository
	policies repository.SLAPolicyRepository

	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSLAService constructs the service.
func NewSLAService(tickets repository.TicketRepository, policies repository.SLAPolicyRepository, dispatcher events.Dispatcher, logger *zap.Logger) *SLAService {
	return &SLAService{
		tickets:    tickets,
		policies:   policies,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// IsBreached reports whether the ticket misses either target of its policy
// at the given instant. A stamped first response or resolution freezes the
// corresponding clock.
func IsBreached(ticket *domain.Ticket, policy *domain.SLAPolicy, now time.Time) bool {
	if ticket.FirstResponseAt == nil {
		if now.After(policy.FirstResponseDeadline(ticket.CreatedAt)) {
			return true
		}
	} else if ticket.FirstResponseAt.After(policy.FirstResponseDeadline(ticket.CreatedAt)) {
		return true
	}

	if ticket.ResolvedAt == nil {
		return now.After(policy.ResolutionDeadline(ticket.CreatedAt))
	}
	return ticket.ResolvedAt.After(policy.ResolutionDeadline(ticket.CreatedAt))
}

// Sweep scans tickets that carry a policy and have not breached yet, latching
// the flag on any that crossed a deadline. One bad ticket never aborts the
// rest of the pass.
func (s *SLAService) Sweep(ctx context.Context) (int, error) {
	tickets, err := s.tickets.ListUnbreachedWithPolicy(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	policies := make(map[string]*domain.SLAPolicy)
	breached := 0

	for i := range tickets {
		ticket := &tickets[i]
		policy, ok := policies[*ticket.SLAPolicyID]
		if !ok {
			policy, err = s.policies.GetByID(ctx, *ticket.SLAPolicyID)
			if err != nil {
				s.logger.Error("load sla policy",
					zap.String("policy_id", *ticket.SLAPolicyID), zap.Error(err))
				continue
			}
			policies[policy.ID] = policy
		}

		if !IsBreached(ticket, policy, now) {
			continue
		}

		ticket.SLABreached = true
		if err := s.tickets.Update(ctx, ticket); err != nil {
			s.logger.Error("latch sla breach", zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		breached++

		publishEvent(ctx, s.dispatcher, events.Event{
			Type:     events.EventSLABreached,
			TicketID: ticket.ID,
			Payload:  events.SLABreachedPayload{Ticket: ticket},
		})
	}
	return breached, nil
}
