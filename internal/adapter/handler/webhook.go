package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-recorder/internal/infrastructure/external/recordbot"
	"github.com/johnquangdev/meeting-recorder/internal/usecase/webhookproc"
)

// SignatureHeader carries the provider's HMAC of the raw body
const SignatureHeader = "X-Recorder-Signature"

const webhookSource = "recorder"

// WebhookHandler receives recording provider notifications. Receipt is
// acknowledged immediately; all handling runs detached so the sender always
// gets a fast 2xx.
type WebhookHandler struct {
	processor *webhookproc.Service
	secret    string
	logger    *zap.Logger
}

// NewWebhookHandler creates a webhook handler
func NewWebhookHandler(processor *webhookproc.Service, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		secret:    secret,
		logger:    logger,
	}
}

// webhookBody is the provider's envelope
type webhookBody struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// HandleRecorderWebhook ingests one provider notification
func (h *WebhookHandler) HandleRecorderWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read body"})
	}

	if !recordbot.VerifyHMAC(h.secret, body, c.Request().Header.Get(SignatureHeader)) {
		h.logger.Warn("📭 Webhook signature rejected",
			zap.String("remote", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
	}

	var envelope webhookBody
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Event == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid webhook format"})
	}

	payload := envelope.Data
	if payload == nil {
		payload = json.RawMessage("{}")
	}

	event, err := h.processor.Ingest(c.Request().Context(), webhookSource, envelope.Event, payload)
	if err != nil {
		h.logger.Error("Failed to persist webhook event",
			zap.String("event_type", envelope.Event),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to record event"})
	}

	h.logger.Info("📨 Webhook event received",
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", envelope.Event))

	h.processor.ProcessAsync(event)

	return c.JSON(http.StatusOK, map[string]string{"status": "accepted"})
}
