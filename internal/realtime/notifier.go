package realtime

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
)

// Notifier translates domain events into websocket broadcasts. Delivery is
// best-effort and only reaches currently-connected clients.
type Notifier struct {
	hub *Hub
}

// NewNotifier constructs the notifier.
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// RegisterHandlers subscribes to the dispatcher.
func (n *Notifier) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
	dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketChange)
	dispatcher.Subscribe(events.EventMessageAdded, n.handleMessageAdded)
	dispatcher.Subscribe(events.EventMessageStatus, n.handleTicketChange)
	dispatcher.Subscribe(events.EventSLABreached, n.handleTicketChange)
}

// New tickets alert the whole desk, not just ticket watchers.
func (n *Notifier) handleTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	msg := NewTicketMessage{Type: ServerNewTicket, Ticket: payload.Ticket}
	n.hub.BroadcastToRole(domain.RoleAgent, msg)
	n.hub.BroadcastToRole(domain.RoleManager, msg)
	return nil
}

func (n *Notifier) handleTicketUpdated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		return nil
	}
	n.hub.BroadcastToTicket(event.TicketID, TicketUpdateMessage{
		Type:     ServerTicketUpdate,
		TicketID: event.TicketID,
		Update:   payload.Ticket,
	}, actorID(event))
	return nil
}

func (n *Notifier) handleTicketChange(_ context.Context, event events.Event) error {
	n.hub.BroadcastToTicket(event.TicketID, TicketUpdateMessage{
		Type:     ServerTicketUpdate,
		TicketID: event.TicketID,
		Update:   event.Payload,
	}, actorID(event))
	return nil
}

// The acting user already sees the result locally; echoing it back would
// duplicate the message in their view.
func (n *Notifier) handleMessageAdded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MessageAddedPayload)
	if !ok {
		return nil
	}
	n.hub.BroadcastToTicket(event.TicketID, NewMessageMessage{
		Type:     ServerNewMessage,
		TicketID: event.TicketID,
		Message:  payload.Message,
	}, actorID(event))
	return nil
}

func actorID(event events.Event) string {
	if event.ActorID == nil {
		return ""
	}
	return *event.ActorID
}
