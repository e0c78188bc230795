package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
)

const sessionBuffer = 32

// Session is one live client connection, tagged with the authenticated user,
// its role and at most one subscribed ticket. Nothing survives a restart;
// clients reconnect and re-subscribe.
type Session struct {
	UserID string
	Role   domain.UserRole

	ticketID string // guarded by the hub mutex
	send     chan []byte
}

// Outbox exposes the outbound frame channel consumed by the write pump.
// The channel is closed when the session is unregistered.
func (s *Session) Outbox() <-chan []byte {
	return s.send
}

// Hub is the process-wide connection registry. All mutation and iteration
// goes through its lock; per-session delivery never blocks the caller.
type Hub struct {
	mu       sync.RWMutex
	sessions map[*Session]struct{}
	logger   *zap.Logger
}

// NewHub creates an empty registry.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions: make(map[*Session]struct{}),
		logger:   logger,
	}
}

// Register adds a connection for the given user.
func (h *Hub) Register(userID string, role domain.UserRole) *Session {
	session := &Session{
		UserID: userID,
		Role:   role,
		send:   make(chan []byte, sessionBuffer),
	}
	h.mu.Lock()
	h.sessions[session] = struct{}{}
	count := len(h.sessions)
	h.mu.Unlock()

	h.logger.Info("client connected", zap.String("user_id", userID), zap.Int("clients", count))
	return session
}

// Unregister removes the connection from all broadcast targets and closes
// its outbox.
func (h *Hub) Unregister(session *Session) {
	h.mu.Lock()
	_, ok := h.sessions[session]
	if ok {
		delete(h.sessions, session)
		close(session.send)
	}
	count := len(h.sessions)
	h.mu.Unlock()

	if ok {
		h.logger.Info("client disconnected", zap.String("user_id", session.UserID), zap.Int("clients", count))
	}
}

// JoinTicket subscribes the session to a ticket's conversation. A session
// watches at most one ticket; joining replaces any previous subscription.
func (h *Hub) JoinTicket(session *Session, ticketID string) {
	h.mu.Lock()
	session.ticketID = ticketID
	h.mu.Unlock()
}

// LeaveTicket clears the session's subscription.
func (h *Hub) LeaveTicket(session *Session) {
	h.mu.Lock()
	session.ticketID = ""
	h.mu.Unlock()
}

// BroadcastToTicket delivers to every session subscribed to the ticket,
// skipping the excluded user so senders do not echo their own actions.
// Delivery is best-effort: a session with a full buffer misses the frame.
func (h *Hub) BroadcastToTicket(ticketID string, message any, excludeUserID string) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("marshal broadcast", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for session := range h.sessions {
		if session.ticketID != ticketID {
			continue
		}
		if excludeUserID != "" && session.UserID == excludeUserID {
			continue
		}
		h.deliver(session, data)
	}
}

// BroadcastToRole delivers to every session whose authenticated role matches.
func (h *Hub) BroadcastToRole(role domain.UserRole, message any) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("marshal broadcast", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for session := range h.sessions {
		if session.Role != role {
			continue
		}
		h.deliver(session, data)
	}
}

func (h *Hub) deliver(session *Session, data []byte) {
	select {
	case session.send <- data:
	default:
		h.logger.Warn("dropping frame for slow client", zap.String("user_id", session.UserID))
	}
}
