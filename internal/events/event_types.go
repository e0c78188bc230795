package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventMessageAdded   EventType = "message_added"
	EventMessageStatus  EventType = "message_status_changed"
	EventSLABreached    EventType = "sla_breached"
	EventTicketAssigned EventType = "ticket_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket *domain.Ticket `json:"ticket"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status,omitempty"`
	Ticket    *domain.Ticket      `json:"ticket"`
}

// MessageAddedPayload payload.
type MessageAddedPayload struct {
	Message *domain.Message `json:"message"`
}

// MessageStatusPayload payload.
type MessageStatusPayload struct {
	MessageID string               `json:"message_id"`
	Status    domain.MessageStatus `json:"status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedAgentID *string `json:"assigned_agent_id,omitempty"`
}

// SLABreachedPayload payload.
type SLABreachedPayload struct {
	Ticket *domain.Ticket `json:"ticket"`
}
