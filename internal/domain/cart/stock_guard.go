package cart

import (
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/catalog"
)

var (
	ErrInvalidQuantity    = errors.New("cart: quantity must be positive")
	ErrProductUnavailable = errors.New("cart: product is not available for purchase")
)

// StockExceededError reports a request for more units than are on hand
type StockExceededError struct {
	Available int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("cart: only %d items in stock", e.Available)
}

// StockGuard validates requested quantities against a product's
// purchase limits and current stock.
type StockGuard struct{}

// NewStockGuard creates a stock guard
func NewStockGuard() *StockGuard {
	return &StockGuard{}
}

// Clamp returns the quantity that may actually be placed in a cart for
// the given product. Requests outside the per-order purchase window are
// pulled back into it; only a request above stock on hand is rejected.
func (g *StockGuard) Clamp(product *catalog.Product, requested int) (int, error) {
	if product == nil || !product.Available {
		return 0, ErrProductUnavailable
	}
	if requested <= 0 {
		return 0, ErrInvalidQuantity
	}

	quantity := requested
	if quantity < product.MinPurchase {
		quantity = product.MinPurchase
	}
	if product.MaxPurchase > 0 && quantity > product.MaxPurchase {
		quantity = product.MaxPurchase
	}
	if quantity > product.StockQuantity {
		return 0, &StockExceededError{Available: product.StockQuantity}
	}
	return quantity, nil
}
