package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	domainorder "github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	ErrPaymentNotCompleted = errors.New("order: payment did not complete")
	ErrBasketGone          = errors.New("order: basket lines are gone and no order exists for the payment")
)

// Materializer turns a paid checkout into exactly one order. It is
// reached from two racing paths, the gateway webhook and the shopper's
// redirect back to the shop, and must stay idempotent under both.
//
// Exactly-once is enforced twice over: the conditional MarkPaid update
// elects a single winner, and the unique index on Order.PaymentID
// rejects any second insert that slips through regardless.
type Materializer struct {
	txScope     TransactionScope
	paymentRepo payment.PaymentRecordRepository
	logger      *zap.Logger

	// loser-path re-check tuning, see Materialize
	recheckAttempts int
	recheckDelay    time.Duration
}

// NewMaterializer creates a new Materializer
func NewMaterializer(txScope TransactionScope, paymentRepo payment.PaymentRecordRepository, logger *zap.Logger) *Materializer {
	return &Materializer{
		txScope:         txScope,
		paymentRepo:     paymentRepo,
		logger:          logger,
		recheckAttempts: 5,
		recheckDelay:    200 * time.Millisecond,
	}
}

// Materialize creates the order for a payment, or returns the order
// that already exists. paymentIntentID may be empty on the redirect
// path; the webhook path carries the gateway's intent reference.
func (m *Materializer) Materialize(ctx context.Context, paymentID uuid.UUID, paymentIntentID string) (*OrderResponse, error) {
	rec, err := m.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if rec.Status == payment.StatusFailed {
		return nil, ErrPaymentNotCompleted
	}

	// fast path: the order already exists
	if resp, err := m.findExisting(ctx, paymentID); err == nil {
		return resp, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	won, err := m.paymentRepo.MarkPaid(ctx, paymentID, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if won {
		m.logger.Info("payment transitioned to paid",
			zap.String("payment_id", paymentID.String()),
			zap.String("basket_no", rec.BasketNo.String()))
		return m.createOrder(ctx, rec)
	}

	// Lost the MarkPaid race: some other caller is (or was) building the
	// order. Re-read for a bounded window before assuming that caller
	// crashed between MarkPaid and the order insert.
	for attempt := 0; attempt < m.recheckAttempts; attempt++ {
		resp, err := m.findExisting(ctx, paymentID)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}

		current, err := m.paymentRepo.FindByID(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		if current.Status == payment.StatusFailed {
			return nil, ErrPaymentNotCompleted
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.recheckDelay):
		}
	}

	// Recovery: finish the crashed winner's work. The unique index on
	// PaymentID still guarantees at most one order exists.
	m.logger.Warn("no order appeared for paid payment, recovering",
		zap.String("payment_id", paymentID.String()))
	return m.createOrder(ctx, rec)
}

func (m *Materializer) findExisting(ctx context.Context, paymentID uuid.UUID) (*OrderResponse, error) {
	var resp *OrderResponse
	err := m.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.OrderRepo().FindByPaymentID(ctx, paymentID)
		if err != nil {
			return err
		}
		resp = toOrderResponse(existing)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// orderNoRetries bounds how often a generated order number may collide
// before materialization gives up.
const orderNoRetries = 3

// createOrder snapshots the basket into an order and clears the basket,
// all in one transaction. A duplicate-key failure on the payment ID
// means another caller finished first and the insert collapses into a
// read; a duplicate on the generated order number is retried with a
// fresh one.
func (m *Materializer) createOrder(ctx context.Context, rec *payment.PaymentRecord) (*OrderResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= orderNoRetries; attempt++ {
		resp, err := m.insertOrder(ctx, rec)
		if err == nil {
			return resp, nil
		}

		if errors.Is(err, shared.ErrAlreadyExists) || errors.Is(err, ErrBasketGone) {
			existing, exErr := m.findExisting(ctx, rec.ID)
			if exErr == nil {
				return existing, nil
			}
			if errors.Is(err, ErrBasketGone) {
				return nil, ErrBasketGone
			}
			// No order exists for this payment, so the duplicate key was
			// the generated order number. Each insert attempt draws a
			// fresh number.
			m.logger.Warn("order number collision, retrying",
				zap.String("payment_id", rec.ID.String()),
				zap.Int("attempt", attempt+1))
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (m *Materializer) insertOrder(ctx context.Context, rec *payment.PaymentRecord) (*OrderResponse, error) {
	var resp *OrderResponse
	err := m.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, err := repos.CartRepo().FindByBasket(ctx, rec.BasketNo)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrBasketGone
		}

		o, err := domainorder.NewOrder(rec.Owner(), rec.ID, rec.BasketNo,
			rec.Subtotal, rec.Tax, rec.ShippingFee, shippingAddress(rec))
		if err != nil {
			return err
		}
		for i := range lines {
			product, err := repos.ProductRepo().FindByID(ctx, lines[i].ProductID)
			if err != nil {
				return err
			}
			if err := o.AddItem(product.ID, product.Name, product.DisplayPrice(), lines[i].Quantity); err != nil {
				return err
			}
		}

		if err := repos.OrderRepo().Create(ctx, o); err != nil {
			return err
		}
		if err := repos.CartRepo().DeleteByBasket(ctx, rec.BasketNo); err != nil {
			return err
		}

		m.logger.Info("order materialized",
			zap.String("order_no", o.OrderNo),
			zap.String("payment_id", rec.ID.String()),
			zap.Int("items", len(o.Items)))
		resp = toOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func shippingAddress(rec *payment.PaymentRecord) domainorder.ShippingAddress {
	c := rec.ShippingContact
	return domainorder.ShippingAddress{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		Country:    c.Country,
		PostalCode: c.PostalCode,
	}
}
