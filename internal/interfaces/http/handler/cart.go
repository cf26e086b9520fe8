package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/identity"
)

// BuyNowRecorder remembers which product a buy-now checkout should be
// scoped to.
type BuyNowRecorder interface {
	RememberBuyNow(ctx context.Context, owner identity.Identity, productID uuid.UUID) error
}

// CartHandler handles shopper cart endpoints
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
	buyNow      BuyNowRecorder
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService, buyNow BuyNowRecorder) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		buyNow:      buyNow,
	}
}

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// RegisterRoutes registers cart routes on the shopper group
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	cart.GET("", h.Summary)
	cart.POST("/items", h.AddItem)
	cart.POST("/items/:id/increase", h.Increase)
	cart.POST("/items/:id/decrease", h.Decrease)
	cart.DELETE("/items/:id", h.RemoveItem)
	cart.POST("/buy-now", h.BuyNow)
}

// Summary returns the cart with its money breakdown
func (h *CartHandler) Summary(c *gin.Context) {
	shopper, ok := getShopper(c)
	if !ok {
		h.Unauthorized(c, "Could not establish who is shopping")
		return
	}

	summary, err := h.cartService.Summary(c.Request.Context(), shopper)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// AddItem puts a product into the cart, merging with an existing line
func (h *CartHandler) AddItem(c *gin.Context) {
	shopper, ok := getShopper(c)
	if !ok {
		h.Unauthorized(c, "Could not establish who is shopping")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	line, err := h.cartService.Add(c.Request.Context(), shopper, productID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, line)
}

// Increase bumps a cart line by one unit
func (h *CartHandler) Increase(c *gin.Context) {
	h.adjustLine(c, h.cartService.Increase)
}

// Decrease lowers a cart line by one unit
func (h *CartHandler) Decrease(c *gin.Context) {
	h.adjustLine(c, h.cartService.Decrease)
}

func (h *CartHandler) adjustLine(c *gin.Context, adjust func(context.Context, identity.Identity, uuid.UUID) (*cartapp.CartLineResponse, error)) {
	shopper, ok := getShopper(c)
	if !ok {
		h.Unauthorized(c, "Could not establish who is shopping")
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cart item ID format")
		return
	}

	line, err := adjust(c.Request.Context(), shopper, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

// RemoveItem deletes a cart line
func (h *CartHandler) RemoveItem(c *gin.Context) {
	shopper, ok := getShopper(c)
	if !ok {
		h.Unauthorized(c, "Could not establish who is shopping")
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cart item ID format")
		return
	}

	if err := h.cartService.Remove(c.Request.Context(), shopper, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// BuyNow pins the product's cart line to the requested quantity and
// remembers it so the next checkout covers only that product.
func (h *CartHandler) BuyNow(c *gin.Context) {
	shopper, ok := getShopper(c)
	if !ok {
		h.Unauthorized(c, "Could not establish who is shopping")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	line, err := h.cartService.BuyNow(c.Request.Context(), shopper, productID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.buyNow.RememberBuyNow(c.Request.Context(), shopper, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}
