package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/provider"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const (
	whatsappChannel    = "whatsapp"
	inboundTicketTitle = "WhatsApp Support Request"
	mediaPlaceholder   = "Media message"
)

// ConversationService turns inbound provider events into customers, contacts,
// tickets and messages. Resolution is serialized per contact address so two
// rapid messages from the same sender cannot race the find-or-create steps.
type ConversationService struct {
	customers repository.CustomerRepository
	contacts  repository.ContactRepository
	tickets   repository.TicketRepository
	messages  repository.MessageRepository
	policies  repository.SLAPolicyRepository

	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu    sync.Mutex
	locks map[string]*addressLock
}

// addressLock serializes resolution for one sender address. The refcount
// tracks holders and waiters so the entry can be reaped once idle.
type addressLock struct {
	mu   sync.Mutex
	refs int
}

// ConversationDependencies bundles collaborators for the service.
type ConversationDependencies struct {
	CustomerRepo  repository.CustomerRepository
	ContactRepo   repository.ContactRepository
	TicketRepo    repository.TicketRepository
	MessageRepo   repository.MessageRepository
	SLAPolicyRepo repository.SLAPolicyRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// Conversation is the resolved owner chain for one inbound event.
type Conversation struct {
	Customer *domain.Customer
	Contact  *domain.Contact
	Ticket   *domain.Ticket
}

// NewConversationService constructs the service.
func NewConversationService(deps ConversationDependencies) *ConversationService {
	return &ConversationService{
		customers:  deps.CustomerRepo,
		contacts:   deps.ContactRepo,
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		policies:   deps.SLAPolicyRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		locks:      make(map[string]*addressLock),
	}
}

// ProcessInbound resolves the conversation for the event and records the
// message. Re-delivery of the same provider event is a no-op: the message is
// keyed by the provider message id.
func (s *ConversationService) ProcessInbound(ctx context.Context, event *provider.MessageUpsert) (*domain.Message, error) {
	address := event.SenderNumber()
	unlock := s.lockAddress(address)
	defer unlock()

	if event.Key.ID != "" {
		existing, err := s.messages.GetByProviderMessageID(ctx, event.Key.ID)
		if err == nil {
			s.logger.Debug("duplicate provider event ignored", zap.String("provider_message_id", event.Key.ID))
			return existing, nil
		}
		if !errorutil.IsNotFound(err) {
			return nil, err
		}
	}

	conversation, err := s.resolveConversation(ctx, event)
	if err != nil {
		return nil, err
	}

	msg, err := s.ingestInbound(ctx, event, conversation.Ticket)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// resolveConversation finds or creates the customer, contact and open ticket
// owning the event. Messages from a contact with an open ticket continue that
// ticket; a new ticket only opens once the previous one left "open".
func (s *ConversationService) resolveConversation(ctx context.Context, event *provider.MessageUpsert) (*Conversation, error) {
	address := event.SenderNumber()

	contact, err := s.contacts.GetByWhatsappNumber(ctx, address)
	if errorutil.IsNotFound(err) {
		contact, err = s.createContact(ctx, event, address)
	}
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, contact.CustomerID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.tickets.FindLatestOpenByCustomer(ctx, customer.ID)
	if errorutil.IsNotFound(err) {
		ticket, err = s.createTicket(ctx, event, customer, contact)
	}
	if err != nil {
		return nil, err
	}

	return &Conversation{Customer: customer, Contact: contact, Ticket: ticket}, nil
}

// createContact is the only path that auto-creates a customer. The display
// name hint names both; the raw address is the fallback.
func (s *ConversationService) createContact(ctx context.Context, event *provider.MessageUpsert, address string) (*domain.Contact, error) {
	name := event.PushName
	if name == "" {
		name = address
	}

	customer := &domain.Customer{
		Name:     name,
		Segment:  domain.SegmentResidential,
		IsActive: true,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	contact := &domain.Contact{
		CustomerID:     customer.ID,
		WhatsappNumber: address,
	}
	if event.PushName != "" {
		contact.Name = &event.PushName
	}
	err := s.contacts.Create(ctx, contact)
	if errorutil.IsUniqueViolation(err) {
		// Lost a cross-process race on the address; the winner's contact is
		// authoritative.
		return s.contacts.GetByWhatsappNumber(ctx, address)
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ConversationService) createTicket(ctx context.Context, event *provider.MessageUpsert, customer *domain.Customer, contact *domain.Contact) (*domain.Ticket, error) {
	description := event.Message.Text()
	if description == "" {
		description = "New WhatsApp message"
	}

	ticket := &domain.Ticket{
		Title:       inboundTicketTitle,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityNormal,
		CustomerID:  customer.ID,
		ContactID:   contact.ID,
		Channel:     whatsappChannel,
	}

	if policy, err := s.policies.GetActiveByPriority(ctx, ticket.Priority); err == nil {
		ticket.SLAPolicyID = &policy.ID
	} else if !errorutil.IsNotFound(err) {
		return nil, err
	}

	if err := createNumberedTicket(ctx, s.tickets, ticket, time.Now()); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload:  events.TicketCreatedPayload{Ticket: ticket},
	})
	return ticket, nil
}

// ingestInbound maps the provider payload to the internal record. Inbound
// messages arrive already delivered.
func (s *ConversationService) ingestInbound(ctx context.Context, event *provider.MessageUpsert, ticket *domain.Ticket) (*domain.Message, error) {
	content := event.Message.Text()
	if content == "" {
		content = mediaPlaceholder
	}

	msg := &domain.Message{
		TicketID:  ticket.ID,
		Direction: domain.DirectionIn,
		Type:      event.Message.Kind(),
		Content:   content,
		MediaURL:  event.Message.MediaURL(),
		Status:    domain.MessageStatusDelivered,
	}
	if event.Key.ID != "" {
		msg.ProviderMessageID = &event.Key.ID
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventMessageAdded,
		TicketID: ticket.ID,
		Payload:  events.MessageAddedPayload{Message: msg},
	})
	return msg, nil
}

// ApplyStatusUpdate reconciles a provider delivery callback with the stored
// message, located by the provider message id.
func (s *ConversationService) ApplyStatusUpdate(ctx context.Context, event *provider.MessageStatusEvent) error {
	msg, err := s.messages.GetByProviderMessageID(ctx, event.Key.ID)
	if err != nil {
		return err
	}

	status := event.DeliveryStatus()
	if msg.Status == status {
		return nil
	}
	if err := s.messages.UpdateStatus(ctx, msg.ID, status); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventMessageStatus,
		TicketID: msg.TicketID,
		Payload:  events.MessageStatusPayload{MessageID: msg.ID, Status: status},
	})
	return nil
}

func (s *ConversationService) lockAddress(address string) func() {
	s.mu.Lock()
	lock, ok := s.locks[address]
	if !ok {
		lock = &addressLock{}
		s.locks[address] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, address)
		}
		s.mu.Unlock()
	}
}

func (s *ConversationService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}
