package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeAccountLocked, http.StatusLocked},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeBelowMinimum, http.StatusUnprocessableEntity},
		{ErrCodeLeadTime, http.StatusUnprocessableEntity},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"ERR_INVALID_QUANTITY", http.StatusBadRequest},
		{"ERR_INVALID_PHONE", http.StatusBadRequest},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"BELOW_MINIMUM", ErrCodeBelowMinimum},
		{"TOKEN_REVOKED", ErrCodeTokenRevoked},
		{"INTERNAL_ERROR", ErrCodeInternal},
		{"ACCOUNT_DEACTIVATED", ErrCodeAccountInactive},
		{"UPLOAD_NOT_FOUND", ErrCodeNotFound},
		{"INVALID_QUANTITY", "ERR_INVALID_QUANTITY"},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"", ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainCodesHaveStatus(t *testing.T) {
	// codes raised by the bakery domain must not fall through to 500
	for _, code := range []string{
		"NOT_FOUND", "ALREADY_EXISTS", "INVALID_STATE", "INSUFFICIENT_STOCK", "BELOW_MINIMUM",
		"PRODUCT_UNAVAILABLE", "LEAD_TIME", "EMPTY_ORDER", "ALREADY_PAID", "LAST_ADMIN",
		"TOKEN_EXPIRED", "TOKEN_INVALID", "TOKEN_REVOKED", "INVALID_CREDENTIALS", "ACCOUNT_LOCKED",
		"ACCOUNT_INACTIVE", "UNAUTHORIZED", "FORBIDDEN", "CONCURRENCY_CONFLICT", "INVALID_RECIPE",
		"ALREADY_ACTIVE", "STORAGE_DISABLED", "PRINTING_DISABLED", "RENDER_TIMEOUT",
	} {
		t.Run(code, func(t *testing.T) {
			assert.NotEqual(t, http.StatusInternalServerError, GetHTTPStatus(NormalizeErrorCode(code)))
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "customer_phone", Message: "must be a valid phone number", Code: ErrCodeValidationFormat},
		{Field: "lines", Message: "is required", Code: ErrCodeValidationRequired},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "customer_phone", resp.Error.Details[0].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	data, err := json.Marshal(NewErrorResponseWithRequestID(ErrCodeNotFound, "Pedido no encontrado", "req-test-123"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["success"])
	assert.NotContains(t, raw, "data")
	errBody := raw["error"].(map[string]any)
	assert.Equal(t, ErrCodeNotFound, errBody["code"])
	assert.Equal(t, "req-test-123", errBody["request_id"])
	assert.NotContains(t, errBody, "details")
}

func TestNewSuccessResponseWithMetaPagination(t *testing.T) {
	tests := []struct {
		total         int64
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{100, 10, 10, 10},
		{101, 10, 11, 10},
		{0, 10, 0, 10},
		{9, 10, 1, 10},
		{100, 0, 5, 20},
		{100, -1, 5, 20},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta(nil, tt.total, 1, tt.pageSize)
		assert.True(t, resp.Success)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
	}
}
