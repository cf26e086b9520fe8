package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"not found", ErrCodeNotFound, http.StatusNotFound},
		{"validation", ErrCodeValidation, http.StatusBadRequest},
		{"unauthorized", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrCodeForbidden, http.StatusForbidden},
		{"insufficient stock", ErrCodeInsufficientStock, http.StatusConflict},
		{"empty cart", ErrCodeEmptyCart, http.StatusUnprocessableEntity},
		{"gateway unavailable", ErrCodeGatewayUnavailable, http.StatusBadGateway},
		{"signature invalid", ErrCodeSignatureInvalid, http.StatusBadRequest},
		{"payment incomplete", ErrCodePaymentIncomplete, http.StatusPaymentRequired},
		{"unknown code", "ERR_SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"domain not found", "NOT_FOUND", ErrCodeNotFound},
		{"domain insufficient stock", "INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"domain invalid transition", "INVALID_TRANSITION", ErrCodeInvalidState},
		{"domain invalid price", "INVALID_PRICE", ErrCodeValidation},
		{"already normalized", ErrCodeConflict, ErrCodeConflict},
		{"unknown domain code", "SOMETHING_INTERNAL", ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeErrorCode(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 45, 2, 20)

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PageSize)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "order not found", "req-123")

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "order not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}
