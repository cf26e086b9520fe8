package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	domaincart "github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CartLineResponse is one cart line enriched with catalog data
type CartLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CartSummaryResponse is the full cart with its money breakdown
type CartSummaryResponse struct {
	Lines    []CartLineResponse `json:"lines"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Tax      decimal.Decimal    `json:"tax"`
	Shipping decimal.Decimal    `json:"shipping"`
	Total    decimal.Decimal    `json:"total"`
}

func toLineResponse(item *domaincart.CartItem, product *catalog.Product) CartLineResponse {
	price := product.DisplayPrice()
	return CartLineResponse{
		ID:          item.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   price,
		Quantity:    item.Quantity,
		LineTotal:   price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		UpdatedAt:   item.UpdatedAt,
	}
}
