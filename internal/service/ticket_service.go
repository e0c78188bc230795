package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// allowedTransitions is the full lifecycle graph. Terminal states have no
// outgoing edges; resolved can reopen into in_progress.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen: {
		domain.TicketStatusInProgress,
		domain.TicketStatusPendingCustomer,
		domain.TicketStatusPendingThirdParty,
		domain.TicketStatusResolved,
		domain.TicketStatusCancelled,
	},
	domain.TicketStatusInProgress: {
		domain.TicketStatusOpen,
		domain.TicketStatusPendingCustomer,
		domain.TicketStatusPendingThirdParty,
		domain.TicketStatusResolved,
		domain.TicketStatusCancelled,
	},
	domain.TicketStatusPendingCustomer: {
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusCancelled,
	},
	domain.TicketStatusPendingThirdParty: {
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusCancelled,
	},
	domain.TicketStatusResolved: {
		domain.TicketStatusClosed,
		domain.TicketStatusInProgress,
		domain.TicketStatusCancelled,
	},
	domain.TicketStatusClosed:    {},
	domain.TicketStatusCancelled: {},
}

func transitionAllowed(from, to domain.TicketStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TicketService owns the ticket lifecycle for the agent-facing API.
type TicketService struct {
	tickets   repository.TicketRepository
	customers repository.CustomerRepository
	contacts  repository.ContactRepository
	users     repository.UserRepository
	tags      repository.TagRepository
	policies  repository.SLAPolicyRepository

	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	CustomerRepo  repository.CustomerRepository
	ContactRepo   repository.ContactRepository
	UserRepo      repository.UserRepository
	TagRepo       repository.TagRepository
	SLAPolicyRepo repository.SLAPolicyRepository
	Dispatcher    events.Dispatcher
}

// CreateTicketInput is an agent-created ticket, as opposed to the inbound
// auto-created flow.
type CreateTicketInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	CustomerID  string
	ContactID   string
	Channel     string
	ActorID     string
}

// UpdateTicketInput carries a partial ticket mutation. Nil fields stay
// untouched.
type UpdateTicketInput struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	ActorID     string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		customers:  deps.CustomerRepo,
		contacts:   deps.ContactRepo,
		users:      deps.UserRepo,
		tags:       deps.TagRepo,
		policies:   deps.SLAPolicyRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket opens a ticket on behalf of an agent. The customer and contact
// must already exist.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errorutil.NewValidationError("title is required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityNormal
	}
	if !input.Priority.Valid() {
		return nil, errorutil.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	if _, err := s.customers.GetByID(ctx, input.CustomerID); err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	contact, err := s.contacts.GetByID(ctx, input.ContactID)
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	if contact.CustomerID != input.CustomerID {
		return nil, errorutil.NewValidationError("contact does not belong to customer", nil)
	}

	channel := input.Channel
	if channel == "" {
		channel = whatsappChannel
	}

	ticket := &domain.Ticket{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		CustomerID:  input.CustomerID,
		ContactID:   input.ContactID,
		Channel:     channel,
	}
	if policy, err := s.policies.GetActiveByPriority(ctx, ticket.Priority); err == nil {
		ticket.SLAPolicyID = &policy.ID
	} else if !errorutil.IsNotFound(err) {
		return nil, err
	}

	if err := createNumberedTicket(ctx, s.tickets, ticket, time.Now()); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actorPtr(input.ActorID),
		Payload:  events.TicketCreatedPayload{Ticket: ticket},
	})
	return ticket, nil
}

// GetTicket returns one ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	return ticket, nil
}

// GetTicketByNumber returns one ticket by its display number.
func (s *TicketService) GetTicketByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByNumber(ctx, number)
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	return ticket, nil
}

// ListTickets returns a filtered page plus the unpaged total.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	return s.tickets.ListWithFilter(ctx, filter)
}

// UpdateTicket applies a partial mutation. Status changes must follow the
// transition graph; resolution and closure timestamps are stamped on the
// first entry into their state and never overwritten.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, input UpdateTicketInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}

	oldStatus := ticket.Status

	if input.Status != nil && *input.Status != ticket.Status {
		next := *input.Status
		if !next.Valid() {
			return nil, errorutil.NewValidationError("unknown status", map[string]any{"status": next})
		}
		if !transitionAllowed(ticket.Status, next) {
			return nil, errorutil.NewConflict("status transition not allowed", map[string]any{
				"from": ticket.Status,
				"to":   next,
			})
		}
		ticket.Status = next
		now := time.Now()
		if next == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
			ticket.ResolvedAt = &now
		}
		if next.IsTerminal() && ticket.ClosedAt == nil {
			ticket.ClosedAt = &now
		}
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, errorutil.NewValidationError("title is required", nil)
		}
		ticket.Title = *input.Title
	}
	if input.Description != nil {
		ticket.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, errorutil.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.ToDomainError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		ActorID:  actorPtr(input.ActorID),
		Payload:  events.TicketUpdatedPayload{OldStatus: oldStatus, Ticket: ticket},
	})
	return ticket, nil
}

// AssignAgent sets or clears the assigned agent. Assignment of an open
// ticket moves it to in_progress.
func (s *TicketService) AssignAgent(ctx context.Context, ticketID string, agentID *string, actorID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	if ticket.Status.IsTerminal() {
		return nil, errorutil.NewConflict("ticket is closed", map[string]any{"status": ticket.Status})
	}

	if agentID != nil {
		agent, err := s.users.GetByID(ctx, *agentID)
		if err != nil {
			return nil, errorutil.ToDomainError(err)
		}
		if !agent.IsActive {
			return nil, errorutil.NewValidationError("agent is inactive", nil)
		}
	}

	ticket.AssignedAgentID = agentID
	if agentID != nil && ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, errorutil.ToDomainError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  actorPtr(actorID),
		Payload:  events.TicketAssignedPayload{AssignedAgentID: agentID},
	})
	return ticket, nil
}

// ListAllTags returns every active label, for pickers.
func (s *TicketService) ListAllTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.ListActive(ctx)
}

// ListTags returns the labels attached to a ticket.
func (s *TicketService) ListTags(ctx context.Context, ticketID string) ([]domain.Tag, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	return s.tags.ListByTicket(ctx, ticketID)
}

// AttachTag links a label to a ticket; re-attaching is a no-op.
func (s *TicketService) AttachTag(ctx context.Context, ticketID, tagID string) error {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return errorutil.ToDomainError(err)
	}
	return s.tags.AttachToTicket(ctx, ticketID, tagID)
}

// DetachTag unlinks a label from a ticket.
func (s *TicketService) DetachTag(ctx context.Context, ticketID, tagID string) error {
	return s.tags.DetachFromTicket(ctx, ticketID, tagID)
}

func actorPtr(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
