package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
)

type messageFixture struct {
	service    *MessageService
	tickets    *fakeTicketRepo
	messages   *fakeMessageRepo
	contacts   *fakeContactRepo
	sender     *fakeSender
	dispatcher *recordingDispatcher
	ticketID   string
}

func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	f := &messageFixture{
		tickets:    newFakeTicketRepo(),
		messages:   newFakeMessageRepo(),
		contacts:   newFakeContactRepo(),
		sender:     &fakeSender{},
		dispatcher: &recordingDispatcher{},
	}
	f.service = NewMessageService(MessageDependencies{
		MessageRepo: f.messages,
		TicketRepo:  f.tickets,
		ContactRepo: f.contacts,
		Sender:      f.sender,
		Dispatcher:  f.dispatcher,
		Logger:      zap.NewNop(),
	})

	ctx := context.Background()
	contact := &domain.Contact{CustomerID: "cust-1", WhatsappNumber: "5511999990000"}
	if err := f.contacts.Create(ctx, contact); err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	ticket := &domain.Ticket{
		Number:     "TK-202609-0001",
		Title:      "WhatsApp Support Request",
		Status:     domain.TicketStatusOpen,
		Priority:   domain.TicketPriorityNormal,
		CustomerID: "cust-1",
		ContactID:  contact.ID,
		Channel:    "whatsapp",
	}
	if err := f.tickets.Create(ctx, ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	f.ticketID = ticket.ID
	return f
}

func TestSendOutboundDispatchesAndStampsFirstResponse(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	msg, err := f.service.SendOutbound(ctx, OutboundInput{
		TicketID: f.ticketID,
		AuthorID: "agent-1",
		Content:  "ola, como posso ajudar?",
	})
	if err != nil {
		t.Fatalf("SendOutbound: %v", err)
	}

	if msg.Direction != domain.DirectionOut {
		t.Errorf("direction = %q, want out", msg.Direction)
	}
	if msg.Status != domain.MessageStatusSent {
		t.Errorf("status = %q, want sent", msg.Status)
	}
	if got := f.sender.sentCount(); got != 1 {
		t.Fatalf("dispatches = %d, want 1", got)
	}
	if f.sender.sent[0].To != "5511999990000" {
		t.Errorf("dispatched to %q", f.sender.sent[0].To)
	}

	ticket, _ := f.tickets.GetByID(ctx, f.ticketID)
	if ticket.FirstResponseAt == nil {
		t.Fatal("first response not stamped")
	}
	stamped := *ticket.FirstResponseAt

	if _, err := f.service.SendOutbound(ctx, OutboundInput{
		TicketID: f.ticketID,
		AuthorID: "agent-1",
		Content:  "mais alguma coisa?",
	}); err != nil {
		t.Fatalf("second SendOutbound: %v", err)
	}
	ticket, _ = f.tickets.GetByID(ctx, f.ticketID)
	if !ticket.FirstResponseAt.Equal(stamped) {
		t.Error("first response timestamp changed on second reply")
	}
}

func TestSendOutboundInternalNoteNeverDispatches(t *testing.T) {
	f := newMessageFixture(t)

	msg, err := f.service.SendOutbound(context.Background(), OutboundInput{
		TicketID:   f.ticketID,
		AuthorID:   "agent-1",
		Content:    "cliente parece frustrado",
		IsInternal: true,
	})
	if err != nil {
		t.Fatalf("SendOutbound: %v", err)
	}

	if got := f.sender.sentCount(); got != 0 {
		t.Errorf("dispatches = %d, want 0 for internal note", got)
	}
	if !msg.IsInternal {
		t.Error("message not flagged internal")
	}

	ticket, _ := f.tickets.GetByID(context.Background(), f.ticketID)
	if ticket.FirstResponseAt != nil {
		t.Error("internal note must not stamp first response")
	}
}

func TestSendOutboundDispatchFailureKeepsMessageSent(t *testing.T) {
	f := newMessageFixture(t)
	f.sender.failNext = true

	msg, err := f.service.SendOutbound(context.Background(), OutboundInput{
		TicketID: f.ticketID,
		AuthorID: "agent-1",
		Content:  "tentativa",
	})
	if err != nil {
		t.Fatalf("SendOutbound must not fail on dispatch failure, got %v", err)
	}

	// The message reached storage; transport failure must not demote it.
	if got := f.messages.get(msg.ID).Status; got != domain.MessageStatusSent {
		t.Errorf("stored status = %q, want sent", got)
	}
	if got := len(f.dispatcher.byType(events.EventMessageAdded)); got != 1 {
		t.Errorf("message_added events = %d, want 1", got)
	}
}

func TestSendOutboundContactLookupFailureKeepsMessageSent(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	ticket, _ := f.tickets.GetByID(ctx, f.ticketID)
	ticket.ContactID = "contact-gone"
	if err := f.tickets.Update(ctx, ticket); err != nil {
		t.Fatalf("detach contact: %v", err)
	}

	msg, err := f.service.SendOutbound(ctx, OutboundInput{
		TicketID: f.ticketID,
		AuthorID: "agent-1",
		Content:  "oi",
	})
	if err != nil {
		t.Fatalf("SendOutbound: %v", err)
	}

	if got := f.sender.sentCount(); got != 0 {
		t.Errorf("dispatches = %d, want 0 without a contact", got)
	}
	if got := f.messages.get(msg.ID).Status; got != domain.MessageStatusSent {
		t.Errorf("stored status = %q, want sent", got)
	}
}

func TestSendOutboundValidation(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	if _, err := f.service.SendOutbound(ctx, OutboundInput{TicketID: f.ticketID, Content: "   "}); err == nil {
		t.Error("blank content accepted")
	}
	if _, err := f.service.SendOutbound(ctx, OutboundInput{TicketID: "missing", Content: "oi"}); err == nil {
		t.Error("unknown ticket accepted")
	}

	ticket, _ := f.tickets.GetByID(ctx, f.ticketID)
	ticket.Status = domain.TicketStatusClosed
	if err := f.tickets.Update(ctx, ticket); err != nil {
		t.Fatalf("close ticket: %v", err)
	}
	if _, err := f.service.SendOutbound(ctx, OutboundInput{TicketID: f.ticketID, Content: "oi"}); err == nil {
		t.Error("reply on closed ticket accepted")
	}
}
