package provider

import (
	"encoding/json"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
)

// WebhookEnvelope is the outer shape of every provider callback.
type WebhookEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Webhook event names emitted by the provider.
const (
	EventMessageUpsert = "message.upsert"
	EventMessageStatus = "message.status"
)

// MessageKey identifies a provider message and its sender address.
type MessageKey struct {
	RemoteJID string `json:"remoteJid"`
	ID        string `json:"id"`
}

// MessageUpsert carries one inbound message event.
type MessageUpsert struct {
	Key      MessageKey  `json:"key"`
	PushName string      `json:"pushName"`
	Message  MessageBody `json:"message"`
}

// MessageBody is a tagged variant over the provider's message sub-types.
// Exactly one of the pointer fields is expected to be set for non-text
// messages; Conversation carries plain text.
type MessageBody struct {
	Conversation string           `json:"conversation,omitempty"`
	ExtendedText *ExtendedText    `json:"extendedTextMessage,omitempty"`
	Image        *MediaAttachment `json:"imageMessage,omitempty"`
	Document     *DocumentFile    `json:"documentMessage,omitempty"`
	Audio        *MediaAttachment `json:"audioMessage,omitempty"`
	Video        *MediaAttachment `json:"videoMessage,omitempty"`
	Location     *LocationPin     `json:"locationMessage,omitempty"`
	Contact      *ContactCard     `json:"contactMessage,omitempty"`
}

// ExtendedText wraps quoted/linked text messages.
type ExtendedText struct {
	Text string `json:"text"`
}

// MediaAttachment covers image, audio and video payloads.
type MediaAttachment struct {
	URL     string `json:"url,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// DocumentFile carries file metadata.
type DocumentFile struct {
	URL      string `json:"url,omitempty"`
	Title    string `json:"title,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// LocationPin carries coordinates.
type LocationPin struct {
	Latitude  float64 `json:"degreesLatitude"`
	Longitude float64 `json:"degreesLongitude"`
	Name      string  `json:"name,omitempty"`
}

// ContactCard carries a shared contact.
type ContactCard struct {
	DisplayName string `json:"displayName,omitempty"`
	Vcard       string `json:"vcard,omitempty"`
}

// SenderNumber strips the provider's JID suffix from the sender address.
func (u *MessageUpsert) SenderNumber() string {
	return strings.TrimSuffix(u.Key.RemoteJID, "@s.whatsapp.net")
}

// Kind maps the variant to the internal message type.
func (b *MessageBody) Kind() domain.MessageType {
	switch {
	case b.Image != nil:
		return domain.MessageTypeImage
	case b.Document != nil:
		return domain.MessageTypeDocument
	case b.Audio != nil:
		return domain.MessageTypeAudio
	case b.Video != nil:
		return domain.MessageTypeVideo
	case b.Location != nil:
		return domain.MessageTypeLocation
	case b.Contact != nil:
		return domain.MessageTypeContact
	default:
		return domain.MessageTypeText
	}
}

// Text returns the textual content of the message, falling back to a
// type-specific caption for media payloads, or empty when nothing textual
// exists.
func (b *MessageBody) Text() string {
	switch {
	case b.Conversation != "":
		return b.Conversation
	case b.ExtendedText != nil:
		return b.ExtendedText.Text
	case b.Image != nil:
		return b.Image.Caption
	case b.Video != nil:
		return b.Video.Caption
	case b.Document != nil:
		if b.Document.Title != "" {
			return b.Document.Title
		}
		return b.Document.FileName
	case b.Location != nil:
		return b.Location.Name
	case b.Contact != nil:
		return b.Contact.DisplayName
	}
	return ""
}

// MediaURL returns the provider media reference when present.
func (b *MessageBody) MediaURL() *string {
	var url string
	switch {
	case b.Image != nil:
		url = b.Image.URL
	case b.Document != nil:
		url = b.Document.URL
	case b.Audio != nil:
		url = b.Audio.URL
	case b.Video != nil:
		url = b.Video.URL
	}
	if url == "" {
		return nil
	}
	return &url
}

// MessageStatusEvent carries a delivery-status callback; Status is the
// provider's numeric code.
type MessageStatusEvent struct {
	Key    MessageKey `json:"key"`
	Status int        `json:"status"`
}

// DeliveryStatus maps the numeric code to the internal enum. Unknown codes
// fall back to "sent".
func (e *MessageStatusEvent) DeliveryStatus() domain.MessageStatus {
	switch e.Status {
	case 2:
		return domain.MessageStatusDelivered
	case 3:
		return domain.MessageStatusRead
	default:
		return domain.MessageStatusSent
	}
}
