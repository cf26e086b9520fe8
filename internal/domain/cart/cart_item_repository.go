package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
)

// CartItemRepository defines the interface for cart persistence
type CartItemRepository interface {
	// FindByID finds a cart line by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*CartItem, error)

	// FindActiveByOwner finds all unpaid lines belonging to an identity
	FindActiveByOwner(ctx context.Context, owner identity.Identity) ([]CartItem, error)

	// FindActiveByOwnerAndProduct finds the unpaid line an identity holds
	// for a product, or shared.ErrNotFound when there is none
	FindActiveByOwnerAndProduct(ctx context.Context, owner identity.Identity, productID uuid.UUID) (*CartItem, error)

	// FindByBasket finds all lines stamped with a basket number
	FindByBasket(ctx context.Context, basketNo uuid.UUID) ([]CartItem, error)

	// Save creates or updates a cart line
	Save(ctx context.Context, item *CartItem) error

	// Delete removes a cart line
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByBasket removes every line stamped with a basket number
	DeleteByBasket(ctx context.Context, basketNo uuid.UUID) error
}
