package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// Status represents the lifecycle state of a payment attempt.
// Transitions are monotonic: INITIATED may become PAID or FAILED,
// and neither terminal state ever changes again.
type Status string

const (
	StatusInitiated Status = "INITIATED"
	StatusPaid      Status = "PAID"
	StatusFailed    Status = "FAILED"
)

// CanTransitionTo checks if the status can move to the target status
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusInitiated && (target == StatusPaid || target == StatusFailed)
}

// ShippingContact carries the address collected at checkout
type ShippingContact struct {
	FirstName  string `gorm:"type:varchar(100);not null"`
	LastName   string `gorm:"type:varchar(100);not null"`
	Email      string `gorm:"type:varchar(254);not null"`
	Phone      string `gorm:"type:varchar(32)"`
	Address    string `gorm:"type:varchar(255);not null"`
	City       string `gorm:"type:varchar(100);not null"`
	Country    string `gorm:"type:varchar(100);not null"`
	PostalCode string `gorm:"type:varchar(20)"`
}

// PaymentRecord tracks one checkout attempt from initiation through the
// gateway round trip. It is the aggregate root for payment operations.
type PaymentRecord struct {
	shared.BaseAggregateRoot
	UserID           *uuid.UUID      `gorm:"type:uuid;index:idx_payment_user_status"`
	SessionKey       *string         `gorm:"type:varchar(64);index:idx_payment_session_status"`
	BasketNo         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Tax              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ShippingFee      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status           Status          `gorm:"type:varchar(20);not null;default:'INITIATED';index:idx_payment_user_status;index:idx_payment_session_status"`
	GatewayReference string          `gorm:"type:varchar(255);index"` // gateway checkout session id
	PaymentIntentID  string          `gorm:"type:varchar(255)"`
	FailureReason    string          `gorm:"type:varchar(255)"`
	PaidAt           *time.Time
	ShippingContact  ShippingContact `gorm:"embedded;embeddedPrefix:ship_"`
}

// TableName returns the table name for GORM
func (PaymentRecord) TableName() string {
	return "payment_records"
}

// NewPaymentRecord opens a payment attempt for a basket
func NewPaymentRecord(owner identity.Identity, basketNo uuid.UUID, subtotal, tax, shippingFee decimal.Decimal, contact ShippingContact) (*PaymentRecord, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if basketNo == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BASKET", "payment requires a basket number")
	}
	if !subtotal.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "payment subtotal must be positive")
	}

	rec := &PaymentRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BasketNo:          basketNo,
		Subtotal:          subtotal,
		Tax:               tax,
		ShippingFee:       shippingFee,
		Total:             subtotal.Add(tax).Add(shippingFee),
		Status:            StatusInitiated,
		ShippingContact:   contact,
	}
	if owner.IsUser() {
		id := owner.UserID
		rec.UserID = &id
	} else {
		key := owner.SessionKey
		rec.SessionKey = &key
	}
	return rec, nil
}

// Owner returns the identity that opened this payment
func (p *PaymentRecord) Owner() identity.Identity {
	if p.UserID != nil {
		return identity.User(*p.UserID)
	}
	if p.SessionKey != nil {
		return identity.Guest(*p.SessionKey)
	}
	return identity.Identity{}
}

// IsPaid returns true once the payment reached its terminal PAID state
func (p *PaymentRecord) IsPaid() bool {
	return p.Status == StatusPaid
}

// AttachGatewayReference records the gateway session created for this
// payment. Only an INITIATED payment may be attached.
func (p *PaymentRecord) AttachGatewayReference(sessionID string) error {
	if p.Status != StatusInitiated {
		return shared.ErrInvalidState
	}
	p.GatewayReference = sessionID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// MarkPaid moves the payment to PAID. Terminal states are immutable.
func (p *PaymentRecord) MarkPaid(paymentIntentID string) error {
	if !p.Status.CanTransitionTo(StatusPaid) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	p.Status = StatusPaid
	p.PaymentIntentID = paymentIntentID
	p.PaidAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// MarkFailed moves the payment to FAILED. Terminal states are immutable.
func (p *PaymentRecord) MarkFailed(reason string) error {
	if !p.Status.CanTransitionTo(StatusFailed) {
		return shared.ErrInvalidState
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}
