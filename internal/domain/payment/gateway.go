package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCheckoutInvalidPaymentID = errors.New("payment: invalid payment ID")
	ErrCheckoutInvalidBasketNo  = errors.New("payment: invalid basket number")
	ErrCheckoutInvalidAmount    = errors.New("payment: invalid checkout amount")
	ErrCheckoutNoLineItems      = errors.New("payment: checkout requires at least one line item")

	ErrGatewayUnavailable   = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequestFailed = errors.New("payment: gateway request failed")
	ErrSignatureInvalid     = errors.New("payment: invalid event signature")
)

// EventType classifies gateway webhook notifications
type EventType string

const (
	EventPaymentSucceeded EventType = "PAYMENT_SUCCEEDED"
	EventPaymentFailed    EventType = "PAYMENT_FAILED"
	EventIgnored          EventType = "IGNORED"
)

// LineItem is one product line sent to the gateway's hosted checkout
type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// CreateSessionRequest describes the hosted checkout session to create.
// PaymentID and BasketNo travel in the session metadata so webhook
// events can be tied back to the originating payment.
type CreateSessionRequest struct {
	PaymentID     uuid.UUID
	BasketNo      uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	LineItems     []LineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// Validate validates the create session request
func (r *CreateSessionRequest) Validate() error {
	if r.PaymentID == uuid.Nil {
		return ErrCheckoutInvalidPaymentID
	}
	if r.BasketNo == uuid.Nil {
		return ErrCheckoutInvalidBasketNo
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrCheckoutInvalidAmount
	}
	if len(r.LineItems) == 0 {
		return ErrCheckoutNoLineItems
	}
	return nil
}

// CheckoutSession is the gateway's answer to a session request
type CheckoutSession struct {
	SessionID   string
	RedirectURL string
	ExpiresAt   time.Time
}

// Event is a verified webhook notification from the gateway
type Event struct {
	Type            EventType
	SessionID       string
	PaymentIntentID string
	PaymentID       uuid.UUID // from metadata, uuid.Nil when absent
	BasketNo        uuid.UUID // from metadata, uuid.Nil when absent
	FailureReason   string
	RawPayload      []byte
}

// Gateway defines the port interface for the external payment provider.
// The concrete adapter lives in the infrastructure layer.
type Gateway interface {
	// CreateSession creates a hosted checkout session and returns the
	// URL the shopper is redirected to
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*CheckoutSession, error)

	// VerifyEvent checks a webhook payload against its signature header
	// and parses it into an Event. Returns ErrSignatureInvalid when the
	// signature does not match.
	VerifyEvent(payload []byte, signatureHeader string) (*Event, error)
}
