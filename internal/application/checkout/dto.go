package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/payment"
)

// ShippingContactRequest carries the address collected on the checkout form
type ShippingContactRequest struct {
	FirstName  string `json:"first_name" binding:"required,max=100"`
	LastName   string `json:"last_name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"max=32"`
	Address    string `json:"address" binding:"required,max=255"`
	City       string `json:"city" binding:"required,max=100"`
	Country    string `json:"country" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
}

func (r ShippingContactRequest) toDomain() payment.ShippingContact {
	return payment.ShippingContact{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		Country:    r.Country,
		PostalCode: r.PostalCode,
	}
}

// InitiateRequest starts a checkout for the caller's cart. BuyNow
// restricts the checkout to the product remembered by the last buy-now
// call instead of the whole cart.
type InitiateRequest struct {
	BuyNow  bool                   `json:"buy_now"`
	Contact ShippingContactRequest `json:"contact" binding:"required"`
}

// InitiateResponse is the opened payment plus the gateway redirect
type InitiateResponse struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	BasketNo    uuid.UUID       `json:"basket_no"`
	RedirectURL string          `json:"redirect_url"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Shipping    decimal.Decimal `json:"shipping"`
	Total       decimal.Decimal `json:"total"`
}
