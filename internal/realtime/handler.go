package realtime

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

const claimsKey = "ws_claims"

// Handler upgrades authenticated clients and bridges their connection into
// the hub.
type Handler struct {
	hub    *Hub
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewHandler constructs the websocket handler.
func NewHandler(hub *Hub, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, tokens: tokens, logger: logger}
}

// Upgrade validates the identity token carried in the query string before
// allowing the protocol upgrade.
func (h *Handler) Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		claims, err := h.tokens.ParseToken(c.Query("token"))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// Serve returns the upgraded connection handler.
func (h *Handler) Serve() fiber.Handler {
	return websocket.New(h.handle)
}

func (h *Handler) handle(conn *websocket.Conn) {
	claims, ok := conn.Locals(claimsKey).(*auth.Claims)
	if !ok {
		_ = conn.Close()
		return
	}

	session := h.hub.Register(claims.UserID, claims.Role)
	defer h.hub.Unregister(session)

	// The write pump is the connection's only writer; the handshake is
	// queued on the session outbox like any broadcast frame.
	h.greet(session)

	go h.writePump(conn, session)
	h.readLoop(conn, session)
}

func (h *Handler) greet(session *Session) {
	data, err := json.Marshal(ConnectionMessage{
		Type:   ServerConnection,
		Status: "connected",
		UserID: session.UserID,
	})
	if err != nil {
		return
	}
	h.hub.deliver(session, data)
}

func (h *Handler) readLoop(conn *websocket.Conn, session *Session) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket closed unexpectedly", zap.String("user_id", session.UserID), zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.Debug("invalid websocket message", zap.String("user_id", session.UserID))
			continue
		}
		h.dispatch(session, msg)
	}
}

func (h *Handler) dispatch(session *Session, msg ClientMessage) {
	switch msg.Type {
	case ClientJoinTicket:
		h.hub.JoinTicket(session, msg.TicketID)
	case ClientLeaveTicket:
		h.hub.LeaveTicket(session)
	case ClientTyping:
		h.hub.BroadcastToTicket(msg.TicketID, TypingMessage{
			Type:     ServerTyping,
			UserID:   session.UserID,
			TicketID: msg.TicketID,
			IsTyping: msg.IsTyping,
		}, session.UserID)
	default:
		h.logger.Debug("unknown websocket message type", zap.String("type", msg.Type))
	}
}

func (h *Handler) writePump(conn *websocket.Conn, session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case data, ok := <-session.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
