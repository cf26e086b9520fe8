package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	domaincart "github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/payment"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart      = errors.New("checkout: cart is empty")
	ErrNoBuyNowIntent = errors.New("checkout: no buy-now product pending")
)

// Options configures checkout behaviour
type Options struct {
	Currency       string
	SuccessURL     string
	CancelURL      string
	GatewayTimeout time.Duration
}

// CheckoutService opens payments for carts and hands shoppers off to
// the payment gateway's hosted checkout.
type CheckoutService struct {
	txScope     TransactionScope
	paymentRepo payment.PaymentRecordRepository
	gateway     payment.Gateway
	intents     PendingIntentStore
	guard       *domaincart.StockGuard
	pricing     domaincart.PricingPolicy
	opts        Options
	logger      *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	txScope TransactionScope,
	paymentRepo payment.PaymentRecordRepository,
	gateway payment.Gateway,
	intents PendingIntentStore,
	pricing domaincart.PricingPolicy,
	opts Options,
	logger *zap.Logger,
) *CheckoutService {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = 10 * time.Second
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &CheckoutService{
		txScope:     txScope,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		intents:     intents,
		guard:       domaincart.NewStockGuard(),
		pricing:     pricing,
		opts:        opts,
		logger:      logger,
	}
}

// RememberBuyNow stores the product the shopper chose via buy-now so
// the next checkout can be scoped to it.
func (s *CheckoutService) RememberBuyNow(ctx context.Context, owner identity.Identity, productID uuid.UUID) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	return s.intents.Remember(ctx, owner, productID)
}

// ReplayPendingAdd re-keys the guest's stored buy-now intent under the
// user identity, so an intent recorded before login survives the merge.
// A missing intent is not an error.
func (s *CheckoutService) ReplayPendingAdd(ctx context.Context, guest, user identity.Identity) error {
	productID, ok, err := s.intents.Take(ctx, guest)
	if err != nil || !ok {
		return err
	}
	return s.intents.Remember(ctx, user, productID)
}

// Initiate opens a payment for the caller's active cart and creates the
// gateway checkout session. The selected lines are stamped with a fresh
// basket number and the payment is persisted in the same transaction,
// so the webhook can later materialize exactly what was priced here.
func (s *CheckoutService) Initiate(ctx context.Context, owner identity.Identity, req InitiateRequest) (*InitiateResponse, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	var scopedProduct *uuid.UUID
	if req.BuyNow {
		productID, ok, err := s.intents.Take(ctx, owner)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoBuyNowIntent
		}
		scopedProduct = &productID
	}

	var (
		rec    *payment.PaymentRecord
		priced []domaincart.PricedLine
		totals domaincart.Totals
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, err := repos.CartRepo().FindActiveByOwner(ctx, owner)
		if err != nil {
			return err
		}
		if scopedProduct != nil {
			scoped := lines[:0]
			for i := range lines {
				if lines[i].ProductID == *scopedProduct {
					scoped = append(scoped, lines[i])
				}
			}
			lines = scoped
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		ids := make([]uuid.UUID, 0, len(lines))
		for i := range lines {
			ids = append(ids, lines[i].ProductID)
		}
		products, err := repos.ProductRepo().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]int, len(products))
		for i := range products {
			byID[products[i].ID] = i
		}

		basketNo := uuid.New()
		priced = priced[:0]
		for i := range lines {
			idx, ok := byID[lines[i].ProductID]
			if !ok {
				return domaincart.ErrProductUnavailable
			}
			product := &products[idx]
			// re-validate against current stock before taking money
			if _, err := s.guard.Clamp(product, lines[i].Quantity); err != nil {
				return err
			}

			lines[i].AssignBasket(basketNo)
			if err := repos.CartRepo().Save(ctx, &lines[i]); err != nil {
				return err
			}
			priced = append(priced, domaincart.PricedLine{
				ItemID:      lines[i].ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.DisplayPrice(),
				Quantity:    lines[i].Quantity,
			})
		}

		totals = s.pricing.Quote(priced)
		rec, err = payment.NewPaymentRecord(owner, basketNo, totals.Subtotal, totals.Tax, totals.Shipping, req.Contact.toDomain())
		if err != nil {
			return err
		}
		return repos.PaymentRepo().Save(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	session, err := s.createSession(ctx, rec, priced, req.Contact.Email)
	if err != nil {
		// The record stays INITIATED. The gateway call may have timed
		// out after the session was created, and a webhook for it must
		// still be able to materialize the order; the shopper just
		// retries the checkout.
		s.logger.Warn("gateway session creation failed, payment left open",
			zap.String("payment_id", rec.ID.String()), zap.Error(err))
		return nil, err
	}

	if err := rec.AttachGatewayReference(session.SessionID); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("checkout initiated",
		zap.String("payment_id", rec.ID.String()),
		zap.String("basket_no", rec.BasketNo.String()),
		zap.String("session_id", session.SessionID),
		zap.String("total", totals.Total.StringFixed(2)))

	return &InitiateResponse{
		PaymentID:   rec.ID,
		BasketNo:    rec.BasketNo,
		RedirectURL: session.RedirectURL,
		Subtotal:    totals.Subtotal,
		Tax:         totals.Tax,
		Shipping:    totals.Shipping,
		Total:       totals.Total,
	}, nil
}

func (s *CheckoutService) createSession(ctx context.Context, rec *payment.PaymentRecord, priced []domaincart.PricedLine, email string) (*payment.CheckoutSession, error) {
	items := make([]payment.LineItem, 0, len(priced))
	for _, l := range priced {
		items = append(items, payment.LineItem{
			Name:      l.ProductName,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	req := &payment.CreateSessionRequest{
		PaymentID:     rec.ID,
		BasketNo:      rec.BasketNo,
		Amount:        rec.Total,
		Currency:      s.opts.Currency,
		LineItems:     items,
		CustomerEmail: email,
		SuccessURL:    s.opts.SuccessURL,
		CancelURL:     s.opts.CancelURL,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()
	return s.gateway.CreateSession(gctx, req)
}
