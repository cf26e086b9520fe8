package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductHandler handles public catalog endpoints
type ProductHandler struct {
	BaseHandler
	productRepo catalog.ProductRepository
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productRepo catalog.ProductRepository) *ProductHandler {
	return &ProductHandler{productRepo: productRepo}
}

// StockResponse reports how much of a product can be bought right now
type StockResponse struct {
	ProductID   string `json:"product_id"`
	Available   bool   `json:"available"`
	Stock       int    `json:"stock"`
	MinPurchase int    `json:"min_purchase"`
	MaxPurchase int    `json:"max_purchase"`
}

// RegisterRoutes registers product routes on the shopper group
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products/:id/stock", h.Stock)
}

// Stock returns a product's availability and purchase limits
func (h *ProductHandler) Stock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.productRepo.FindByID(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, StockResponse{
		ProductID:   product.ID.String(),
		Available:   product.Available && product.StockQuantity > 0,
		Stock:       product.StockQuantity,
		MinPurchase: product.MinPurchase,
		MaxPurchase: product.MaxPurchase,
	})
}
