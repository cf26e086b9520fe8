package handler

import (
	"github.com/gin-gonic/gin"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	orderapp "github.com/storefront/backend/internal/application/order"
)

// CheckoutHandler handles checkout session endpoints
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
	orderService    *orderapp.OrderService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService, orderService *orderapp.OrderService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

// RegisterRoutes registers checkout routes on the shopper group
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	checkout := rg.Group("/checkout")
	checkout.POST("/sessions", h.CreateSession)
	checkout.GET("/complete", h.Complete)
}

// CreateSession opens a payment for the shopper's cart and returns the
// gateway redirect URL.
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	shopper, ok := getShopper(c)
	if !ok {
		h.Unauthorized(c, "Could not establish who is shopping")
		return
	}

	var req checkoutapp.InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.checkoutService.Initiate(c.Request.Context(), shopper, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Complete is the landing endpoint after the gateway's hosted page. It
// materializes the shopper's latest open payment into an order, or
// returns the order the webhook already produced.
func (h *CheckoutHandler) Complete(c *gin.Context) {
	shopper, ok := getShopper(c)
	if !ok {
		h.Unauthorized(c, "Could not establish who is shopping")
		return
	}

	resp, err := h.orderService.CompleteCheckout(c.Request.Context(), shopper)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
