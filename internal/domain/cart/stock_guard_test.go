package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/storefront/backend/internal/domain/catalog"
)

func newTestProduct(t *testing.T, stock, min, max int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("mug", "Mug", decimal.NewFromFloat(19.99))
	require.NoError(t, err)
	p.StockQuantity = stock
	p.MinPurchase = min
	p.MaxPurchase = max
	return p
}

func TestStockGuardClamp(t *testing.T) {
	guard := NewStockGuard()

	t.Run("accepts quantity within limits", func(t *testing.T) {
		qty, err := guard.Clamp(newTestProduct(t, 10, 1, 5), 3)
		require.NoError(t, err)
		assert.Equal(t, 3, qty)
	})

	t.Run("raises quantity to minimum purchase", func(t *testing.T) {
		qty, err := guard.Clamp(newTestProduct(t, 10, 4, 8), 2)
		require.NoError(t, err)
		assert.Equal(t, 4, qty)
	})

	t.Run("caps quantity at maximum purchase", func(t *testing.T) {
		qty, err := guard.Clamp(newTestProduct(t, 10, 1, 5), 8)
		require.NoError(t, err)
		assert.Equal(t, 5, qty)
	})

	t.Run("ignores maximum purchase of zero", func(t *testing.T) {
		qty, err := guard.Clamp(newTestProduct(t, 10, 1, 0), 8)
		require.NoError(t, err)
		assert.Equal(t, 8, qty)
	})

	t.Run("rejects quantity above stock", func(t *testing.T) {
		_, err := guard.Clamp(newTestProduct(t, 2, 1, 5), 4)
		var stockErr *StockExceededError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 2, stockErr.Available)
	})

	t.Run("rejects clamped minimum above stock", func(t *testing.T) {
		_, err := guard.Clamp(newTestProduct(t, 2, 3, 10), 1)
		var stockErr *StockExceededError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 2, stockErr.Available)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := guard.Clamp(newTestProduct(t, 10, 1, 5), 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = guard.Clamp(newTestProduct(t, 10, 1, 5), -2)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("rejects unavailable product", func(t *testing.T) {
		p := newTestProduct(t, 10, 1, 5)
		p.Available = false
		_, err := guard.Clamp(p, 1)
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})

	t.Run("rejects nil product", func(t *testing.T) {
		_, err := guard.Clamp(nil, 1)
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})
}
