package realtime

import "github.com/spec-kit/support-desk/internal/domain"

// Client → server message types.
const (
	ClientJoinTicket  = "join_ticket"
	ClientLeaveTicket = "leave_ticket"
	ClientTyping      = "typing"
)

// Server → client message types.
const (
	ServerConnection   = "connection"
	ServerNewTicket    = "new_ticket"
	ServerNewMessage   = "new_message"
	ServerTicketUpdate = "ticket_update"
	ServerTyping       = "typing"
)

// ClientMessage is the single inbound frame shape.
type ClientMessage struct {
	Type     string `json:"type"`
	TicketID string `json:"ticketId,omitempty"`
	IsTyping bool   `json:"isTyping,omitempty"`
}

// ConnectionMessage acknowledges a completed handshake.
type ConnectionMessage struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	UserID string `json:"userId"`
}

// NewTicketMessage alerts agents and managers to a freshly created ticket.
type NewTicketMessage struct {
	Type   string         `json:"type"`
	Ticket *domain.Ticket `json:"ticket"`
}

// NewMessageMessage pushes a conversation message to ticket watchers.
type NewMessageMessage struct {
	Type     string          `json:"type"`
	TicketID string          `json:"ticketId"`
	Message  *domain.Message `json:"message"`
}

// TicketUpdateMessage pushes a state change to ticket watchers.
type TicketUpdateMessage struct {
	Type     string `json:"type"`
	TicketID string `json:"ticketId"`
	Update   any    `json:"update"`
}

// TypingMessage relays a typing indicator to the other ticket watchers.
type TypingMessage struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	TicketID string `json:"ticketId"`
	IsTyping bool   `json:"isTyping"`
}
