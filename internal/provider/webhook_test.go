package provider

import (
	"encoding/json"
	"testing"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestSenderNumberStripsJIDSuffix(t *testing.T) {
	upsert := MessageUpsert{Key: MessageKey{RemoteJID: "5511999990000@s.whatsapp.net"}}
	if got := upsert.SenderNumber(); got != "5511999990000" {
		t.Errorf("SenderNumber = %q", got)
	}

	bare := MessageUpsert{Key: MessageKey{RemoteJID: "5511999990000"}}
	if got := bare.SenderNumber(); got != "5511999990000" {
		t.Errorf("SenderNumber without suffix = %q", got)
	}
}

func TestMessageBodyKindAndText(t *testing.T) {
	cases := []struct {
		name     string
		body     MessageBody
		wantKind domain.MessageType
		wantText string
	}{
		{
			name:     "conversation",
			body:     MessageBody{Conversation: "oi"},
			wantKind: domain.MessageTypeText,
			wantText: "oi",
		},
		{
			name:     "extended text",
			body:     MessageBody{ExtendedText: &ExtendedText{Text: "quoted reply"}},
			wantKind: domain.MessageTypeText,
			wantText: "quoted reply",
		},
		{
			name:     "image with caption",
			body:     MessageBody{Image: &MediaAttachment{URL: "u", Caption: "look"}},
			wantKind: domain.MessageTypeImage,
			wantText: "look",
		},
		{
			name:     "document falls back to filename",
			body:     MessageBody{Document: &DocumentFile{URL: "u", FileName: "invoice.pdf"}},
			wantKind: domain.MessageTypeDocument,
			wantText: "invoice.pdf",
		},
		{
			name:     "audio has no text",
			body:     MessageBody{Audio: &MediaAttachment{URL: "u"}},
			wantKind: domain.MessageTypeAudio,
			wantText: "",
		},
		{
			name:     "location uses name",
			body:     MessageBody{Location: &LocationPin{Latitude: -23.5, Longitude: -46.6, Name: "office"}},
			wantKind: domain.MessageTypeLocation,
			wantText: "office",
		},
		{
			name:     "contact card",
			body:     MessageBody{Contact: &ContactCard{DisplayName: "Maria"}},
			wantKind: domain.MessageTypeContact,
			wantText: "Maria",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.body.Kind(); got != tc.wantKind {
				t.Errorf("Kind = %q, want %q", got, tc.wantKind)
			}
			if got := tc.body.Text(); got != tc.wantText {
				t.Errorf("Text = %q, want %q", got, tc.wantText)
			}
		})
	}
}

func TestMessageBodyMediaURL(t *testing.T) {
	withMedia := MessageBody{Video: &MediaAttachment{URL: "https://cdn.example/v.mp4"}}
	if got := withMedia.MediaURL(); got == nil || *got != "https://cdn.example/v.mp4" {
		t.Errorf("MediaURL = %v", got)
	}

	text := MessageBody{Conversation: "oi"}
	if got := text.MediaURL(); got != nil {
		t.Errorf("MediaURL for text = %v, want nil", got)
	}
}

func TestDeliveryStatusMapping(t *testing.T) {
	cases := map[int]domain.MessageStatus{
		1:  domain.MessageStatusSent,
		2:  domain.MessageStatusDelivered,
		3:  domain.MessageStatusRead,
		99: domain.MessageStatusSent,
	}
	for code, want := range cases {
		event := MessageStatusEvent{Status: code}
		if got := event.DeliveryStatus(); got != want {
			t.Errorf("DeliveryStatus(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestWebhookEnvelopeDecoding(t *testing.T) {
	raw := []byte(`{
        "event": "message.upsert",
        "data": {
            "key": {"remoteJid": "5511999990000@s.whatsapp.net", "id": "wamid-1"},
            "pushName": "Maria",
            "message": {"conversation": "preciso de ajuda"}
        }
    }`)

	var envelope WebhookEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Event != EventMessageUpsert {
		t.Fatalf("event = %q", envelope.Event)
	}

	var upsert MessageUpsert
	if err := json.Unmarshal(envelope.Data, &upsert); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if upsert.Key.ID != "wamid-1" {
		t.Errorf("key id = %q", upsert.Key.ID)
	}
	if upsert.PushName != "Maria" {
		t.Errorf("push name = %q", upsert.PushName)
	}
	if upsert.Message.Text() != "preciso de ajuda" {
		t.Errorf("text = %q", upsert.Message.Text())
	}
}
