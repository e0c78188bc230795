package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/provider"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// MessageService records agent messages and dispatches non-internal ones to
// the provider. Dispatch is best-effort: a failed send never undoes the
// stored message.
type MessageService struct {
	messages repository.MessageRepository
	tickets  repository.TicketRepository
	contacts repository.ContactRepository

	sender     provider.Sender
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// MessageDependencies bundles collaborators for the service.
type MessageDependencies struct {
	MessageRepo repository.MessageRepository
	TicketRepo  repository.TicketRepository
	ContactRepo repository.ContactRepository
	Sender      provider.Sender
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// OutboundInput is an agent reply or internal note on a ticket.
type OutboundInput struct {
	TicketID    string
	AuthorID    string
	Content     string
	Type        domain.MessageType
	MediaURL    *string
	IsInternal  bool
	InstanceKey string
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		messages:   deps.MessageRepo,
		tickets:    deps.TicketRepo,
		contacts:   deps.ContactRepo,
		sender:     deps.Sender,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// SendOutbound persists an outbound message and forwards it to the customer's
// whatsapp number unless it is an internal note. The first non-internal reply
// also stamps the ticket's first response time, exactly once.
func (s *MessageService) SendOutbound(ctx context.Context, input OutboundInput) (*domain.Message, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, errorutil.NewValidationError("message content is required", nil)
	}
	if input.Type == "" {
		input.Type = domain.MessageTypeText
	}
	if !input.Type.Valid() {
		return nil, errorutil.NewValidationError("unknown message type", map[string]any{"type": input.Type})
	}

	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	if ticket.Status.IsTerminal() {
		return nil, errorutil.NewConflict("ticket is closed", map[string]any{"status": ticket.Status})
	}

	msg := &domain.Message{
		TicketID:   ticket.ID,
		Direction:  domain.DirectionOut,
		Type:       input.Type,
		Content:    input.Content,
		MediaURL:   input.MediaURL,
		Status:     domain.MessageStatusSent,
		IsInternal: input.IsInternal,
	}
	if input.AuthorID != "" {
		msg.SenderID = &input.AuthorID
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if !input.IsInternal {
		if ticket.FirstResponseAt == nil {
			now := time.Now()
			ticket.FirstResponseAt = &now
			if err := s.tickets.Update(ctx, ticket); err != nil {
				s.logger.Error("stamp first response", zap.String("ticket_id", ticket.ID), zap.Error(err))
			}
		}
		s.dispatchToProvider(ctx, ticket, msg, input.InstanceKey)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventMessageAdded,
		TicketID: ticket.ID,
		ActorID:  msg.SenderID,
		Payload:  events.MessageAddedPayload{Message: msg},
	})
	return msg, nil
}

// dispatchToProvider forwards the message to the contact's address. The
// message is already stored with status "sent"; a failed dispatch is logged
// and never written back to the message. Delivery callbacks own status
// changes from here on.
func (s *MessageService) dispatchToProvider(ctx context.Context, ticket *domain.Ticket, msg *domain.Message, instanceKey string) {
	contact, err := s.contacts.GetByID(ctx, ticket.ContactID)
	if err != nil {
		s.logger.Error("resolve contact for dispatch",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}

	ok := s.sender.SendMessage(ctx, provider.SendRequest{
		To:          contact.WhatsappNumber,
		Content:     msg.Content,
		Type:        msg.Type,
		MediaURL:    msg.MediaURL,
		InstanceKey: instanceKey,
	})
	if !ok {
		s.logger.Warn("provider dispatch failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("message_id", msg.ID))
	}
}

// ListByTicket returns the ticket conversation in chronological order.
func (s *MessageService) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	return s.messages.ListByTicket(ctx, ticketID)
}

func (s *MessageService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}
