package checkout

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
)

// PendingIntentStore remembers, per identity, the single product a
// shopper chose via buy-now. Intents are short-lived: an implementation
// expires them after a TTL, and Take consumes the intent so a second
// checkout falls back to the whole cart.
type PendingIntentStore interface {
	// Remember stores the buy-now product for an identity, replacing
	// any previous intent
	Remember(ctx context.Context, owner identity.Identity, productID uuid.UUID) error

	// Take returns and removes the stored intent. The bool reports
	// whether an intent existed.
	Take(ctx context.Context, owner identity.Identity) (uuid.UUID, bool, error)

	// Clear drops the stored intent, if any
	Clear(ctx context.Context, owner identity.Identity) error
}
