package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// SignatureHeader carries the gateway's payload signature
const SignatureHeader = "Stripe-Signature"

// EventIngester verifies and processes one gateway webhook delivery
type EventIngester interface {
	Ingest(ctx context.Context, payload []byte, signatureHeader string) error
}

// WebhookHandler receives payment gateway webhook deliveries
type WebhookHandler struct {
	BaseHandler
	ingester EventIngester
	logger   *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(ingester EventIngester, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{ingester: ingester, logger: logger}
}

// RegisterRoutes registers webhook routes. These sit outside the
// shopper group: the gateway authenticates with a signature, not a
// session.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/payment", h.HandlePaymentEvent)
}

// HandlePaymentEvent ingests one delivery. Forged payloads get a 400;
// anything after a valid signature is acked with 200 even when
// processing fails, with the failure logged for ops.
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Could not read request body")
		return
	}

	err = h.ingester.Ingest(c.Request.Context(), payload, c.GetHeader(SignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrSignatureInvalid) {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeSignatureInvalid, "Event signature verification failed")
			return
		}
		h.logger.Error("webhook processing failed after valid signature", zap.Error(err))
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"received": true}))
}
