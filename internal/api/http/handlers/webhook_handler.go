package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/provider"
	"github.com/spec-kit/support-desk/internal/service"
)

// WebhookHandler receives provider callbacks. The provider retries on
// non-2xx answers, so every parseable and unparseable request alike is
// acknowledged; processing failures are logged and swallowed.
type WebhookHandler struct {
	conversations *service.ConversationService
	logger        *zap.Logger
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(conversations *service.ConversationService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{conversations: conversations, logger: logger}
}

// Receive POST /webhooks/whatsapp/:instanceKey.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	instanceKey := c.Params("instanceKey")

	var envelope provider.WebhookEnvelope
	if err := c.BodyParser(&envelope); err != nil {
		h.logger.Warn("unparseable webhook", zap.String("instance_key", instanceKey), zap.Error(err))
		return c.JSON(fiber.Map{"received": true})
	}

	switch envelope.Event {
	case provider.EventMessageUpsert:
		var upsert provider.MessageUpsert
		if err := json.Unmarshal(envelope.Data, &upsert); err != nil {
			h.logger.Warn("invalid message.upsert payload", zap.Error(err))
			break
		}
		if _, err := h.conversations.ProcessInbound(c.Context(), &upsert); err != nil {
			h.logger.Error("process inbound message",
				zap.String("instance_key", instanceKey),
				zap.String("provider_message_id", upsert.Key.ID),
				zap.Error(err))
		}
	case provider.EventMessageStatus:
		var status provider.MessageStatusEvent
		if err := json.Unmarshal(envelope.Data, &status); err != nil {
			h.logger.Warn("invalid message.status payload", zap.Error(err))
			break
		}
		if err := h.conversations.ApplyStatusUpdate(c.Context(), &status); err != nil {
			h.logger.Warn("apply status update",
				zap.String("provider_message_id", status.Key.ID),
				zap.Error(err))
		}
	default:
		h.logger.Debug("ignored webhook event", zap.String("event", envelope.Event))
	}

	return c.JSON(fiber.Map{"received": true})
}
