package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
)

// PaymentRecordRepository defines the interface for payment persistence
type PaymentRecordRepository interface {
	// FindByID finds a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentRecord, error)

	// FindByGatewayReference finds a payment by its gateway session id
	FindByGatewayReference(ctx context.Context, sessionID string) (*PaymentRecord, error)

	// FindByBasket finds the payment opened for a basket
	FindByBasket(ctx context.Context, basketNo uuid.UUID) (*PaymentRecord, error)

	// FindLatestUnpaid finds the most recently opened INITIATED payment
	// belonging to an identity, or shared.ErrNotFound
	FindLatestUnpaid(ctx context.Context, owner identity.Identity) (*PaymentRecord, error)

	// Save creates or updates a payment record
	Save(ctx context.Context, record *PaymentRecord) error

	// MarkPaid atomically moves an INITIATED payment to PAID in a single
	// conditional update. It returns true only for the caller that won
	// the transition; a false result means the payment was already in a
	// terminal state.
	MarkPaid(ctx context.Context, id uuid.UUID, paymentIntentID string) (bool, error)

	// MarkFailed atomically moves an INITIATED payment to FAILED.
	// Returns true only when the transition happened.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error)
}
