package domain

import "time"

// MessageDirection distinguishes inbound customer messages from agent replies.
type MessageDirection string

const (
	DirectionIn  MessageDirection = "in"
	DirectionOut MessageDirection = "out"
)

// MessageType tags the payload kind carried by a message.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeAudio    MessageType = "audio"
	MessageTypeDocument MessageType = "document"
	MessageTypeVideo    MessageType = "video"
	MessageTypeLocation MessageType = "location"
	MessageTypeContact  MessageType = "contact"
)

// Valid reports whether the value is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeAudio, MessageTypeDocument,
		MessageTypeVideo, MessageTypeLocation, MessageTypeContact:
		return true
	}
	return false
}

// MessageStatus tracks provider delivery progress for outbound messages.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
	MessageStatusFailed    MessageStatus = "failed"
)

// Message is one unit of a ticket conversation. Content is immutable once
// created; only the delivery status may change afterwards. Internal messages
// are agent-only notes and are never forwarded to the provider.
type Message struct {
	ID                string
	TicketID          string
	Direction         MessageDirection
	Type              MessageType
	Content           string
	MediaURL          *string
	SenderID          *string
	ProviderMessageID *string
	Status            MessageStatus
	IsInternal        bool
	CreatedAt         time.Time
}
