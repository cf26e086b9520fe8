package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// Metadata keys attached to every checkout session. Webhook events carry
// them back so a notification can be tied to the originating payment.
const (
	metadataPaymentID = "payment_id"
	metadataBasketNo  = "basket_no"
)

// Config holds Stripe gateway settings
type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// Validate validates the gateway configuration
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("stripe: webhook secret is required")
	}
	return nil
}

// StripeGateway implements the payment Gateway port using Stripe's hosted
// checkout.
type StripeGateway struct {
	config *Config
	logger *zap.Logger
}

// NewStripeGateway creates a new Stripe gateway adapter
func NewStripeGateway(config *Config, logger *zap.Logger) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	stripe.Key = config.SecretKey

	return &StripeGateway{
		config: config,
		logger: logger,
	}, nil
}

// CreateSession creates a hosted checkout session for the payment
func (g *StripeGateway) CreateSession(ctx context.Context, req *payment.CreateSessionRequest) (*payment.CheckoutSession, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	g.logger.Debug("Creating Stripe checkout session",
		zap.String("payment_id", req.PaymentID.String()),
		zap.String("basket_no", req.BasketNo.String()))

	currency := valueobject.Currency(strings.ToUpper(req.Currency))
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		unit, err := valueobject.NewMoney(li.UnitPrice, currency)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", payment.ErrGatewayRequestFailed, err)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(li.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(unit.MinorUnits()),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.config.SuccessURL),
		CancelURL:  stripe.String(g.config.CancelURL),
		LineItems:  lineItems,
	}
	params.Context = ctx
	params.Metadata = map[string]string{
		metadataPaymentID: req.PaymentID.String(),
		metadataBasketNo:  req.BasketNo.String(),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	sess, err := session.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe checkout session",
			zap.String("payment_id", req.PaymentID.String()),
			zap.Error(err))
		return nil, classifyStripeError(err)
	}

	g.logger.Info("Created Stripe checkout session",
		zap.String("payment_id", req.PaymentID.String()),
		zap.String("session_id", sess.ID))

	return &payment.CheckoutSession{
		SessionID:   sess.ID,
		RedirectURL: sess.URL,
		ExpiresAt:   time.Unix(sess.ExpiresAt, 0),
	}, nil
}

// VerifyEvent checks the webhook payload against its signature header and
// parses it into a gateway-neutral event
func (g *StripeGateway) VerifyEvent(payload []byte, signatureHeader string) (*payment.Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.config.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrSignatureInvalid, err)
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		return g.sessionEvent(&event, payment.EventPaymentSucceeded, "")
	case "checkout.session.async_payment_failed":
		return g.sessionEvent(&event, payment.EventPaymentFailed, "payment failed")
	case "checkout.session.expired":
		return g.sessionEvent(&event, payment.EventPaymentFailed, "checkout session expired")
	default:
		return &payment.Event{Type: payment.EventIgnored, RawPayload: payload}, nil
	}
}

// sessionEvent parses the checkout session object out of a webhook event
func (g *StripeGateway) sessionEvent(event *stripe.Event, eventType payment.EventType, reason string) (*payment.Event, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: malformed session payload: %v", payment.ErrGatewayRequestFailed, err)
	}

	// A completed session with payment still pending settles later via
	// the async_payment events.
	if eventType == payment.EventPaymentSucceeded && sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		return &payment.Event{Type: payment.EventIgnored, SessionID: sess.ID, RawPayload: event.Data.Raw}, nil
	}

	out := &payment.Event{
		Type:          eventType,
		SessionID:     sess.ID,
		FailureReason: reason,
		RawPayload:    event.Data.Raw,
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	if raw, ok := sess.Metadata[metadataPaymentID]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			out.PaymentID = id
		}
	}
	if raw, ok := sess.Metadata[metadataBasketNo]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			out.BasketNo = id
		}
	}
	return out, nil
}

// classifyStripeError maps Stripe API errors onto the gateway port errors
func classifyStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
		}
		return fmt.Errorf("%w: %v", payment.ErrGatewayRequestFailed, err)
	}
	return fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
}

// Ensure StripeGateway implements the Gateway port
var _ payment.Gateway = (*StripeGateway)(nil)
