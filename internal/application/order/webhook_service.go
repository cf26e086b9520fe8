package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// WebhookService ingests payment gateway events. Signature failures are
// the only rejected input; once an event is authentic it is always
// acknowledged, because the redirect path can finish any work a dropped
// event would have done.
type WebhookService struct {
	gateway      payment.Gateway
	paymentRepo  payment.PaymentRecordRepository
	materializer *Materializer
	logger       *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(gateway payment.Gateway, paymentRepo payment.PaymentRecordRepository, materializer *Materializer, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		gateway:      gateway,
		paymentRepo:  paymentRepo,
		materializer: materializer,
		logger:       logger,
	}
}

// Ingest verifies and processes one webhook delivery. It returns
// payment.ErrSignatureInvalid for forged or malformed payloads; any
// other outcome is an acknowledgement.
func (s *WebhookService) Ingest(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.gateway.VerifyEvent(payload, signatureHeader)
	if err != nil {
		return err
	}
	if event.Type == payment.EventIgnored {
		return nil
	}

	rec, err := s.resolvePayment(ctx, event)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("webhook event references unknown payment",
				zap.String("session_id", event.SessionID))
			return nil
		}
		s.logger.Error("failed to resolve payment for webhook event",
			zap.String("session_id", event.SessionID), zap.Error(err))
		return nil
	}

	switch event.Type {
	case payment.EventPaymentSucceeded:
		if _, err := s.materializer.Materialize(ctx, rec.ID, event.PaymentIntentID); err != nil {
			s.logger.Error("failed to materialize order from webhook",
				zap.String("payment_id", rec.ID.String()), zap.Error(err))
		}
	case payment.EventPaymentFailed:
		moved, err := s.paymentRepo.MarkFailed(ctx, rec.ID, event.FailureReason)
		if err != nil {
			s.logger.Error("failed to mark payment failed from webhook",
				zap.String("payment_id", rec.ID.String()), zap.Error(err))
		} else if moved {
			s.logger.Info("payment marked failed from webhook",
				zap.String("payment_id", rec.ID.String()),
				zap.String("reason", event.FailureReason))
		}
	}
	return nil
}

// resolvePayment ties an event back to a payment record. Metadata wins,
// then the gateway session id, then the basket number.
func (s *WebhookService) resolvePayment(ctx context.Context, event *payment.Event) (*payment.PaymentRecord, error) {
	if event.PaymentID != uuid.Nil {
		rec, err := s.paymentRepo.FindByID(ctx, event.PaymentID)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	if event.SessionID != "" {
		rec, err := s.paymentRepo.FindByGatewayReference(ctx, event.SessionID)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	if event.BasketNo != uuid.Nil {
		return s.paymentRepo.FindByBasket(ctx, event.BasketNo)
	}
	return nil, shared.ErrNotFound
}
