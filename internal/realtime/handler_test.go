package realtime

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestGreetQueuesHandshakeOnOutbox(t *testing.T) {
	hub := NewHub(zap.NewNop())
	handler := NewHandler(hub, nil, zap.NewNop())

	session := hub.Register("agent-1", domain.RoleAgent)
	handler.greet(session)

	frame := receive(t, session)
	var msg ConnectionMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		t.Fatalf("unmarshal handshake: %v", err)
	}
	if msg.Type != ServerConnection {
		t.Errorf("type = %q, want %q", msg.Type, ServerConnection)
	}
	if msg.Status != "connected" {
		t.Errorf("status = %q, want connected", msg.Status)
	}
	if msg.UserID != "agent-1" {
		t.Errorf("user id = %q", msg.UserID)
	}

	assertEmpty(t, session)
}

func TestGreetPreservesBroadcastOrdering(t *testing.T) {
	hub := NewHub(zap.NewNop())
	handler := NewHandler(hub, nil, zap.NewNop())

	session := hub.Register("agent-1", domain.RoleAgent)
	handler.greet(session)
	hub.BroadcastToRole(domain.RoleAgent, NewTicketMessage{Type: ServerNewTicket})

	var first ConnectionMessage
	if err := json.Unmarshal(receive(t, session), &first); err != nil {
		t.Fatalf("unmarshal first frame: %v", err)
	}
	if first.Type != ServerConnection {
		t.Errorf("first frame type = %q, want the handshake", first.Type)
	}

	var second NewTicketMessage
	if err := json.Unmarshal(receive(t, session), &second); err != nil {
		t.Fatalf("unmarshal second frame: %v", err)
	}
	if second.Type != ServerNewTicket {
		t.Errorf("second frame type = %q", second.Type)
	}
}
