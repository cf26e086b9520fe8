package dto

import "net/http"

// Error codes returned by the storefront API. The ERR_ prefix keeps
// them distinguishable from domain error codes, which are normalized
// through NormalizeErrorCode before they reach a response body.
const (
	// Generic request errors
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeUnauthorized    = "ERR_UNAUTHORIZED"
	ErrCodeForbidden       = "ERR_FORBIDDEN"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeConflict        = "ERR_CONFLICT"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeUnavailable     = "ERR_UNAVAILABLE"

	// Authentication errors
	ErrCodeInvalidToken = "ERR_INVALID_TOKEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"

	// Cart and stock errors
	ErrCodeInsufficientStock  = "ERR_INSUFFICIENT_STOCK"
	ErrCodeProductUnavailable = "ERR_PRODUCT_UNAVAILABLE"
	ErrCodeEmptyCart          = "ERR_EMPTY_CART"
	ErrCodeNoBuyNowIntent     = "ERR_NO_BUY_NOW_INTENT"

	// Payment and order errors
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodePaymentIncomplete   = "ERR_PAYMENT_INCOMPLETE"
	ErrCodeGatewayUnavailable  = "ERR_GATEWAY_UNAVAILABLE"
	ErrCodeSignatureInvalid    = "ERR_SIGNATURE_INVALID"
)

// ErrorCodeHTTPStatus maps API error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,

	ErrCodeInvalidToken: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,

	ErrCodeInsufficientStock:  http.StatusConflict,
	ErrCodeProductUnavailable: http.StatusConflict,
	ErrCodeEmptyCart:          http.StatusUnprocessableEntity,
	ErrCodeNoBuyNowIntent:     http.StatusUnprocessableEntity,

	ErrCodeInvalidState:        http.StatusConflict,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodePaymentIncomplete:   http.StatusPaymentRequired,
	ErrCodeGatewayUnavailable:  http.StatusBadGateway,
	ErrCodeSignatureInvalid:    http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code,
// defaulting to 500 for unknown codes.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates domain error codes (as carried by
// shared.DomainError) to API error codes.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeValidation,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"INVALID_STATE":        ErrCodeInvalidState,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,
	"INVALID_PRICE":        ErrCodeValidation,
	"INVALID_QUANTITY":     ErrCodeValidation,
	"INVALID_PRODUCT":      ErrCodeValidation,
	"INVALID_PRODUCT_NAME": ErrCodeValidation,
	"INVALID_AMOUNT":       ErrCodeValidation,
	"INVALID_BASKET":       ErrCodeValidation,
	"INVALID_PAYMENT":      ErrCodeValidation,
	"INVALID_STATUS":       ErrCodeValidation,
	"INVALID_TRANSITION":   ErrCodeInvalidState,
}

// NormalizeErrorCode converts a domain error code to its API error
// code. Codes already carrying the ERR_ prefix pass through unchanged;
// unknown codes collapse to ERR_INTERNAL so internals never leak.
func NormalizeErrorCode(code string) string {
	if mapped, ok := DomainErrorCodeMapping[code]; ok {
		return mapped
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
