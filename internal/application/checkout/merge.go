package checkout

import (
	"context"

	"github.com/storefront/backend/internal/domain/identity"
)

// GuestCartMerger folds a guest cart into a user's cart.
type GuestCartMerger interface {
	MergeGuestIntoUser(ctx context.Context, guest, user identity.Identity) error
}

// MergeCoordinator runs everything that must follow a guest logging in:
// the cart fold, then the replay of any pending buy-now intent under the
// user identity. It is the Merger handed to the shopper middleware.
type MergeCoordinator struct {
	carts    GuestCartMerger
	checkout *CheckoutService
}

// NewMergeCoordinator creates a MergeCoordinator
func NewMergeCoordinator(carts GuestCartMerger, checkout *CheckoutService) *MergeCoordinator {
	return &MergeCoordinator{carts: carts, checkout: checkout}
}

// MergeGuestIntoUser folds the guest cart and replays the pending intent
func (m *MergeCoordinator) MergeGuestIntoUser(ctx context.Context, guest, user identity.Identity) error {
	if err := m.carts.MergeGuestIntoUser(ctx, guest, user); err != nil {
		return err
	}
	return m.checkout.ReplayPendingAdd(ctx, guest, user)
}
