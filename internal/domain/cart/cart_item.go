package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartItem is one product line in a shopper's cart. Ownership is either
// a user id or a guest session key, never both. BasketNo groups the
// lines that belong to one checkout attempt.
type CartItem struct {
	shared.BaseEntity
	UserID     *uuid.UUID `gorm:"type:uuid;index:idx_cart_user_paid"`
	SessionKey *string    `gorm:"type:varchar(64);index:idx_cart_session_paid"`
	ProductID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Quantity   int        `gorm:"not null"`
	BasketNo   *uuid.UUID `gorm:"type:uuid;index"`
	Paid       bool       `gorm:"not null;default:false;index:idx_cart_user_paid;index:idx_cart_session_paid"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// NewCartItem creates a cart line owned by the given identity
func NewCartItem(owner identity.Identity, productID uuid.UUID, quantity int) (*CartItem, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "cart item requires a product")
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item := &CartItem{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Quantity:   quantity,
	}
	item.setOwner(owner)
	return item, nil
}

func (c *CartItem) setOwner(owner identity.Identity) {
	if owner.IsUser() {
		id := owner.UserID
		c.UserID = &id
		c.SessionKey = nil
		return
	}
	key := owner.SessionKey
	c.SessionKey = &key
	c.UserID = nil
}

// Owner returns the identity that owns this cart line
func (c *CartItem) Owner() identity.Identity {
	if c.UserID != nil {
		return identity.User(*c.UserID)
	}
	if c.SessionKey != nil {
		return identity.Guest(*c.SessionKey)
	}
	return identity.Identity{}
}

// Reassign moves the line to a new owner, used when a guest logs in
func (c *CartItem) Reassign(owner identity.Identity) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	c.setOwner(owner)
	c.UpdatedAt = time.Now()
	return nil
}

// SetQuantity replaces the line quantity
func (c *CartItem) SetQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	c.Quantity = quantity
	c.UpdatedAt = time.Now()
	return nil
}

// AssignBasket stamps the line with the basket that is being checked out
func (c *CartItem) AssignBasket(basketNo uuid.UUID) {
	c.BasketNo = &basketNo
	c.UpdatedAt = time.Now()
}

// MarkPaid flags the line as consumed by a completed payment
func (c *CartItem) MarkPaid() {
	c.Paid = true
	c.UpdatedAt = time.Now()
}
