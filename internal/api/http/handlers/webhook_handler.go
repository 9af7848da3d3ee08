package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/safetydesk/incident-service/internal/observability"
	"github.com/safetydesk/incident-service/internal/service"
	"github.com/safetydesk/incident-service/internal/whatsapp"
)

// WebhookHandler terminates the chat-platform webhook.
type WebhookHandler struct {
	ingest      *service.IngestService
	verifyToken string
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewWebhookHandler constructs the handler.
func NewWebhookHandler(ingest *service.IngestService, verifyToken string, metrics *observability.Metrics, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{ingest: ingest, verifyToken: verifyToken, metrics: metrics, logger: logger}
}

// Verify GET /webhook implements the subscription handshake: echo the
// challenge when mode and verify token match, otherwise forbidden.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		return c.Status(http.StatusOK).SendString(challenge)
	}
	return c.SendStatus(http.StatusForbidden)
}

// Receive POST /webhook processes one delivery. Classified outcomes
// (created, rejected, duplicate, status query) all acknowledge with
// 200; only unexpected failures return 500 so the platform retries.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var payload whatsapp.WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		h.logger.Warn("unparseable webhook payload", zap.Error(err))
		// nothing to retry; acknowledge and move on
		return c.SendStatus(http.StatusOK)
	}

	msg := payload.FirstMessage()
	if msg == nil || msg.ID == "" {
		// status updates and other non-message notifications
		return c.SendStatus(http.StatusOK)
	}

	if err := h.ingest.HandleInbound(c.UserContext(), msg); err != nil {
		h.metrics.RecordDelivery("failed")
		h.logger.Error("inbound processing failed",
			zap.String("provider_message_id", msg.ID), zap.Error(err))
		h.ingest.NotifyTemporaryIssue(c.UserContext(), msg.From)
		return c.SendStatus(http.StatusInternalServerError)
	}
	return c.SendStatus(http.StatusOK)
}
