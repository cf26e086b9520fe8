package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create inserts a new order with its items. The unique index on
	// PaymentID makes a second insert for the same payment fail with
	// shared.ErrAlreadyExists.
	Create(ctx context.Context, o *Order) error

	// FindByID finds an order with its items and status history
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByPaymentID finds the order materialized for a payment
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*Order, error)

	// FindByOrderNo finds an order by its display number
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// FindByOwner lists an identity's orders, newest first
	FindByOwner(ctx context.Context, owner identity.Identity, filter shared.Filter) ([]Order, error)

	// CountByOwner counts an identity's orders
	CountByOwner(ctx context.Context, owner identity.Identity) (int64, error)

	// Save updates an existing order and appends new status changes
	Save(ctx context.Context, o *Order) error
}
