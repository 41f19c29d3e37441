package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"stayhub/internal/webhooks"
	"stayhub/internal/webhooks/service"
	apperrors "stayhub/pkg/errors"
	httputil "stayhub/pkg/http"
	"stayhub/pkg/logger"
	"stayhub/pkg/webhook"

	"github.com/julienschmidt/httprouter"
)

type WebhookHandler struct {
	sync     service.SyncService
	verifier *webhook.Verifier
	log      *logger.Logger
}

func NewWebhookHandler(sync service.SyncService, verifier *webhook.Verifier, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		sync:     sync,
		verifier: verifier,
		log:      log,
	}
}

func (h *WebhookHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "HandleClerk", "error", writeErr)
	}
}

// HandleClerk verifies the signature over the raw body before anything else
// touches the payload. An unverified request never reaches the database.
func (h *WebhookHandler) HandleClerk(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, apperrors.InvalidInput("Failed to read request body"))
		return
	}

	err = h.verifier.Verify(
		body,
		r.Header.Get(webhook.HeaderID),
		r.Header.Get(webhook.HeaderTimestamp),
		r.Header.Get(webhook.HeaderSignature),
	)
	if err != nil {
		h.log.Warn("Webhook signature rejected", "error", err, "msg_id", r.Header.Get(webhook.HeaderID))
		h.writeError(w, apperrors.SignatureInvalid("Webhook signature verification failed"))
		return
	}

	var event webhooks.ClerkEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.writeError(w, apperrors.InvalidInput("Invalid webhook payload"))
		return
	}

	if err := h.sync.HandleEvent(r.Context(), &event); err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteMessage(w, "Webhook processed", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "HandleClerk", "error", err)
	}
}

func (h *WebhookHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/webhooks/clerk", h.HandleClerk)
}
