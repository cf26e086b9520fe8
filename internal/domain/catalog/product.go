package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Product represents a sellable item in the storefront catalog.
// It is the aggregate root for catalog operations.
type Product struct {
	shared.BaseAggregateRoot
	Slug          string           `gorm:"type:varchar(120);not null;uniqueIndex"`
	Name          string           `gorm:"type:varchar(200);not null"`
	Description   string           `gorm:"type:text"`
	Price         decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	SalePrice     *decimal.Decimal `gorm:"type:decimal(18,2)"` // discounted price, nil when not on sale
	MinPurchase   int              `gorm:"not null;default:1"`
	MaxPurchase   int              `gorm:"not null;default:20"`
	StockQuantity int              `gorm:"not null;default:0"`
	Available     bool             `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(slug, name string, price decimal.Decimal) (*Product, error) {
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "product price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              strings.ToLower(slug),
		Name:              name,
		Price:             price,
		MinPurchase:       1,
		MaxPurchase:       20,
		Available:         true,
	}, nil
}

// DisplayPrice returns the price a shopper pays right now: the sale
// price when one is set and lower than the list price.
func (p *Product) DisplayPrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}

// SetSalePrice puts the product on sale
func (p *Product) SetSalePrice(sale decimal.Decimal) error {
	if sale.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "sale price cannot be negative")
	}
	p.SalePrice = &sale
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// ClearSalePrice takes the product off sale
func (p *Product) ClearSalePrice() {
	p.SalePrice = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// AdjustStock changes the on-hand quantity by delta
func (p *Product) AdjustStock(delta int) error {
	next := p.StockQuantity + delta
	if next < 0 {
		return shared.ErrInsufficientStock
	}
	p.StockQuantity = next
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetAvailability toggles whether the product can be purchased
func (p *Product) SetAvailability(available bool) {
	p.Available = available
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// InStock reports whether quantity units can currently be sold
func (p *Product) InStock(quantity int) bool {
	return p.Available && quantity > 0 && quantity <= p.StockQuantity
}

func validateSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return errors.New("product slug cannot be empty")
	}
	if len(slug) > 120 {
		return errors.New("product slug cannot exceed 120 characters")
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("product name cannot be empty")
	}
	if len(name) > 200 {
		return errors.New("product name cannot exceed 200 characters")
	}
	return nil
}
