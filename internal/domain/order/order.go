package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered || target == OrderStatusRefunded
	case OrderStatusCancelled:
		return target == OrderStatusRefunded
	case OrderStatusDelivered, OrderStatusRefunded:
		return false // Terminal states
	}
	return false
}

// ShippingAddress is the delivery address frozen onto the order
type ShippingAddress struct {
	FirstName  string `gorm:"type:varchar(100);not null"`
	LastName   string `gorm:"type:varchar(100);not null"`
	Email      string `gorm:"type:varchar(254);not null"`
	Phone      string `gorm:"type:varchar(32)"`
	Address    string `gorm:"type:varchar(255);not null"`
	City       string `gorm:"type:varchar(100);not null"`
	Country    string `gorm:"type:varchar(100);not null"`
	PostalCode string `gorm:"type:varchar(20)"`
}

// OrderItem is one product line frozen onto an order at materialization.
// Prices are copied from the catalog so later price changes never
// rewrite order history.
type OrderItem struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates an order line snapshot
func NewOrderItem(orderID, productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "unit price cannot be negative")
	}

	return &OrderItem{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// StatusChange is one entry in an order's append-only status history
type StatusChange struct {
	shared.BaseEntity
	OrderID    uuid.UUID   `gorm:"type:uuid;not null;index"`
	FromStatus OrderStatus `gorm:"type:varchar(20);not null"`
	ToStatus   OrderStatus `gorm:"type:varchar(20);not null"`
	Note       string      `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (StatusChange) TableName() string {
	return "order_status_changes"
}

// Order is the fulfilment record materialized from a completed payment.
// PaymentID is unique: one payment can never produce two orders.
type Order struct {
	shared.BaseAggregateRoot
	OrderNo         string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	PaymentID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	BasketNo        uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID          *uuid.UUID      `gorm:"type:uuid;index"`
	SessionKey      *string         `gorm:"type:varchar(64);index"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Tax             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ShippingFee     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'PROCESSING'"`
	TrackingRef     string          `gorm:"type:varchar(64)"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"`
	StatusChanges   []StatusChange  `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// GenerateOrderNo produces a human-readable order number
func GenerateOrderNo(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), uuid.NewString()[:8])
}

// NewOrder materializes an order from a paid checkout. Payment is
// already settled by the time an order exists, so orders enter the
// fulfilment machine at PROCESSING; the hop from PENDING is recorded
// in the status history.
func NewOrder(owner identity.Identity, paymentID, basketNo uuid.UUID, subtotal, tax, shippingFee decimal.Decimal, address ShippingAddress) (*Order, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "order requires a payment ID")
	}
	if basketNo == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BASKET", "order requires a basket number")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNo:           GenerateOrderNo(time.Now()),
		PaymentID:         paymentID,
		BasketNo:          basketNo,
		Subtotal:          subtotal,
		Tax:               tax,
		ShippingFee:       shippingFee,
		Total:             subtotal.Add(tax).Add(shippingFee),
		Status:            OrderStatusProcessing,
		ShippingAddress:   address,
	}
	if owner.IsUser() {
		id := owner.UserID
		o.UserID = &id
	} else {
		key := owner.SessionKey
		o.SessionKey = &key
	}
	o.StatusChanges = append(o.StatusChanges, StatusChange{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		FromStatus: OrderStatusPending,
		ToStatus:   OrderStatusProcessing,
		Note:       "payment completed",
	})
	return o, nil
}

// Owner returns the identity the order belongs to
func (o *Order) Owner() identity.Identity {
	if o.UserID != nil {
		return identity.User(*o.UserID)
	}
	if o.SessionKey != nil {
		return identity.Guest(*o.SessionKey)
	}
	return identity.Identity{}
}

// AddItem appends a product line to the order
func (o *Order) AddItem(productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) error {
	item, err := NewOrderItem(o.ID, productID, productName, unitPrice, quantity)
	if err != nil {
		return err
	}
	o.Items = append(o.Items, *item)
	return nil
}

// UpdateStatus moves the order along the fulfilment state machine and
// appends the transition to the status history.
func (o *Order) UpdateStatus(target OrderStatus, note string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("cannot transition order from %s to %s", o.Status, target))
	}

	change := StatusChange{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		FromStatus: o.Status,
		ToStatus:   target,
		Note:       note,
	}
	o.Status = target
	o.StatusChanges = append(o.StatusChanges, change)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// SetTrackingRef records the carrier tracking reference
func (o *Order) SetTrackingRef(ref string) {
	o.TrackingRef = ref
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}
