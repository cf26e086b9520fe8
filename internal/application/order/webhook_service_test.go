package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/payment"
	"go.uber.org/zap"
)

func newWebhookFixture(t *testing.T) (*WebhookService, *matFixture, *fakeGateway) {
	t.Helper()
	f := newMatFixture(t)
	gw := &fakeGateway{}
	svc := NewWebhookService(gw, f.payments, f.mat, zap.NewNop())
	return svc, f, gw
}

func TestWebhookIngest(t *testing.T) {
	ctx := context.Background()
	owner := identity.User(uuid.New())

	t.Run("rejects invalid signature", func(t *testing.T) {
		svc, _, gw := newWebhookFixture(t)
		gw.verify = payment.ErrSignatureInvalid

		err := svc.Ingest(ctx, []byte(`{}`), "t=bad")
		assert.ErrorIs(t, err, payment.ErrSignatureInvalid)
	})

	t.Run("succeeded event materializes via metadata", func(t *testing.T) {
		svc, f, gw := newWebhookFixture(t)
		rec := f.seedCheckout(t, owner)
		gw.event = &payment.Event{
			Type:            payment.EventPaymentSucceeded,
			SessionID:       rec.GatewayReference,
			PaymentIntentID: "pi_hook",
			PaymentID:       rec.ID,
			BasketNo:        rec.BasketNo,
		}

		require.NoError(t, svc.Ingest(ctx, []byte(`{}`), "t=good"))

		o, err := f.orders.FindByPaymentID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, o.PaymentID)

		paid, err := f.payments.FindByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, paid.Status)
		assert.Equal(t, "pi_hook", paid.PaymentIntentID)
	})

	t.Run("falls back to session id when metadata is missing", func(t *testing.T) {
		svc, f, gw := newWebhookFixture(t)
		rec := f.seedCheckout(t, owner)
		gw.event = &payment.Event{
			Type:      payment.EventPaymentSucceeded,
			SessionID: rec.GatewayReference,
		}

		require.NoError(t, svc.Ingest(ctx, []byte(`{}`), "t=good"))

		_, err := f.orders.FindByPaymentID(ctx, rec.ID)
		require.NoError(t, err)
	})

	t.Run("falls back to basket number last", func(t *testing.T) {
		svc, f, gw := newWebhookFixture(t)
		rec := f.seedCheckout(t, owner)
		gw.event = &payment.Event{
			Type:     payment.EventPaymentSucceeded,
			BasketNo: rec.BasketNo,
		}

		require.NoError(t, svc.Ingest(ctx, []byte(`{}`), "t=good"))

		_, err := f.orders.FindByPaymentID(ctx, rec.ID)
		require.NoError(t, err)
	})

	t.Run("duplicate deliveries stay idempotent", func(t *testing.T) {
		svc, f, gw := newWebhookFixture(t)
		rec := f.seedCheckout(t, owner)
		gw.event = &payment.Event{
			Type:      payment.EventPaymentSucceeded,
			PaymentID: rec.ID,
			SessionID: rec.GatewayReference,
		}

		require.NoError(t, svc.Ingest(ctx, []byte(`{}`), "t=good"))
		require.NoError(t, svc.Ingest(ctx, []byte(`{}`), "t=good"))
		require.NoError(t, svc.Ingest(ctx, []byte(`{}`), "t=good"))

		n, err := f.orders.CountByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("failed event marks the payment failed", func(t *testing.T) {
		svc, f, gw := newWebhookFixture(t)
		rec := f.seedCheckout(t, owner)
		gw.event = &payment.Event{
			Type:          payment.EventPaymentFailed,
			PaymentID:     rec.ID,
			FailureReason: "card declined",
		}

		require.NoError(t, svc.Ingest(ctx, []byte(`{}`), "t=good"))

		failed, err := f.payments.FindByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusFailed, failed.Status)
		assert.Equal(t, "card declined", failed.FailureReason)
	})

	t.Run("failed event after paid is a no-op", func(t *testing.T) {
		svc, f, gw := newWebhookFixture(t)
		rec := f.seedCheckout(t, owner)
		gw.event = &payment.Event{Type: payment.EventPaymentSucceeded, PaymentID: rec.ID}
		require.NoError(t, svc.Ingest(ctx, []byte(`{}`), "t=good"))

		gw.event = &payment.Event{Type: payment.EventPaymentFailed, PaymentID: rec.ID, FailureReason: "late failure"}
		require.NoError(t, svc.Ingest(ctx, []byte(`{}`), "t=good"))

		still, err := f.payments.FindByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, still.Status)
	})

	t.Run("unknown payment is acknowledged", func(t *testing.T) {
		svc, _, gw := newWebhookFixture(t)
		gw.event = &payment.Event{
			Type:      payment.EventPaymentSucceeded,
			SessionID: "cs_unknown",
		}
		assert.NoError(t, svc.Ingest(ctx, []byte(`{}`), "t=good"))
	})

	t.Run("ignored event types are acknowledged", func(t *testing.T) {
		svc, _, gw := newWebhookFixture(t)
		gw.event = &payment.Event{Type: payment.EventIgnored}
		assert.NoError(t, svc.Ingest(ctx, []byte(`{}`), "t=good"))
	})
}
