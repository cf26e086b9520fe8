package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricedLine is a cart line joined with its current catalog price
type PricedLine struct {
	ItemID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// LineTotal returns UnitPrice * Quantity
func (l PricedLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the money breakdown for a basket
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// PricingPolicy computes basket totals. VATRate is a percentage
// (7.5 means 7.5%); ShippingFlat is charged once per basket.
type PricingPolicy struct {
	VATRate      decimal.Decimal
	ShippingFlat decimal.Decimal
}

// NewPricingPolicy creates a pricing policy
func NewPricingPolicy(vatRate, shippingFlat decimal.Decimal) PricingPolicy {
	return PricingPolicy{VATRate: vatRate, ShippingFlat: shippingFlat}
}

// Quote computes the totals for the given lines. Tax is rounded to
// cents after summing, so a basket line never carries rounding drift.
func (p PricingPolicy) Quote(lines []PricedLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(p.VATRate).Div(decimal.NewFromInt(100)).Round(2)

	shipping := decimal.Zero
	if len(lines) > 0 && p.ShippingFlat.IsPositive() {
		shipping = p.ShippingFlat.Round(2)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}
