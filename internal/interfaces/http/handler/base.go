package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	orderapp "github.com/storefront/backend/internal/application/order"
	domaincart "github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getShopper extracts the identity resolved by the shopper middleware
func getShopper(c *gin.Context) (identity.Identity, bool) {
	return middleware.GetShopper(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status and code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status from the code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts application and domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	var stockErr *domaincart.StockExceededError
	if errors.As(err, &stockErr) {
		h.ErrorWithCode(c, dto.ErrCodeInsufficientStock, stockErr.Error())
		return
	}
	switch {
	case errors.Is(err, domaincart.ErrProductUnavailable):
		h.ErrorWithCode(c, dto.ErrCodeProductUnavailable, "Product is not available for purchase")
	case errors.Is(err, domaincart.ErrInvalidQuantity):
		h.ErrorWithCode(c, dto.ErrCodeValidation, "Quantity must be positive")
	case errors.Is(err, checkoutapp.ErrEmptyCart):
		h.ErrorWithCode(c, dto.ErrCodeEmptyCart, "Cart is empty")
	case errors.Is(err, checkoutapp.ErrNoBuyNowIntent):
		h.ErrorWithCode(c, dto.ErrCodeNoBuyNowIntent, "No buy-now product pending, add one first")
	case errors.Is(err, orderapp.ErrPaymentNotCompleted):
		h.ErrorWithCode(c, dto.ErrCodePaymentIncomplete, "Payment has not completed yet")
	case errors.Is(err, orderapp.ErrBasketGone):
		h.ErrorWithCode(c, dto.ErrCodeInvalidState, "Basket is no longer available")
	case errors.Is(err, payment.ErrGatewayUnavailable), errors.Is(err, payment.ErrGatewayRequestFailed):
		h.ErrorWithCode(c, dto.ErrCodeGatewayUnavailable, "Payment gateway is unavailable, try again shortly")
	case errors.Is(err, identity.ErrInvalidIdentity):
		h.Unauthorized(c, "Could not establish who is shopping")
	default:
		h.InternalError(c, "An unexpected error occurred")
	}
}
