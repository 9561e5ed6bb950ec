package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	want := map[string]int{
		ErrCodeUnknown:              http.StatusInternalServerError,
		ErrCodeInternal:             http.StatusInternalServerError,
		ErrCodeValidation:           http.StatusBadRequest,
		ErrCodeValidationRequired:   http.StatusBadRequest,
		ErrCodeBadRequest:           http.StatusBadRequest,
		ErrCodeInvalidInput:         http.StatusBadRequest,
		ErrCodeUnauthorized:         http.StatusUnauthorized,
		ErrCodeTokenExpired:         http.StatusUnauthorized,
		ErrCodeForbidden:            http.StatusForbidden,
		ErrCodeNotFound:             http.StatusNotFound,
		ErrCodeAlreadyExists:        http.StatusConflict,
		ErrCodeConflict:             http.StatusConflict,
		ErrCodeConcurrencyConflict:  http.StatusConflict,
		ErrCodeAlreadyJoined:        http.StatusConflict,
		ErrCodeInvalidState:         http.StatusUnprocessableEntity,
		ErrCodeBusinessRule:         http.StatusUnprocessableEntity,
		ErrCodeInsufficientCapacity: http.StatusUnprocessableEntity,
		ErrCodeCapacityFull:         http.StatusUnprocessableEntity,
		ErrCodeVoucherNotUsable:     http.StatusUnprocessableEntity,
		ErrCodeGatewayFailure:       http.StatusBadGateway,
		ErrCodeRateLimited:          http.StatusTooManyRequests,
	}
	for code, status := range want {
		assert.Equal(t, status, GetHTTPStatus(code), "code %s", code)
	}

	// Codes the map has never heard of surface as 500.
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_NEW"))
}

func TestNormalizeErrorCode(t *testing.T) {
	// Domain errors use bare codes; the HTTP layer maps them onto the ERR_
	// namespace. Codes already in that namespace pass through.
	want := map[string]string{
		"NOT_FOUND":             ErrCodeNotFound,
		"ALREADY_EXISTS":        ErrCodeAlreadyExists,
		"INVALID_INPUT":         ErrCodeInvalidInput,
		"INVALID_STATE":         ErrCodeInvalidState,
		"UNAUTHORIZED":          ErrCodeUnauthorized,
		"FORBIDDEN":             ErrCodeForbidden,
		"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
		"OPTIMISTIC_LOCK_ERROR": ErrCodeConcurrencyConflict,
		"INSUFFICIENT_CAPACITY": ErrCodeInsufficientCapacity,
		"ALREADY_JOINED":        ErrCodeAlreadyJoined,
		"GATEWAY_FAILURE":       ErrCodeGatewayFailure,
		"VOUCHER_EXPIRED":       ErrCodeVoucherExpired,
		"VOUCHER_NOT_OWNER":     ErrCodeForbidden,
		"VALIDATION_ERROR":      ErrCodeValidation,
		"BAD_REQUEST":           ErrCodeBadRequest,
		"INTERNAL_ERROR":        ErrCodeInternal,
		ErrCodeNotFound:         ErrCodeNotFound,
		ErrCodeValidation:       ErrCodeValidation,
		"CUSTOM_ERROR":          "CUSTOM_ERROR",
	}
	for input, expected := range want {
		assert.Equal(t, expected, NormalizeErrorCode(input), "input %s", input)
	}
}

func TestEveryErrorCodeHasAStatus(t *testing.T) {
	codes := []string{
		ErrCodeUnknown, ErrCodeInternal,
		ErrCodeValidation, ErrCodeValidationRequired, ErrCodeValidationFormat, ErrCodeValidationRange,
		ErrCodeUnauthorized, ErrCodeForbidden, ErrCodeTokenExpired, ErrCodeTokenInvalid,
		ErrCodeNotFound, ErrCodeAlreadyExists, ErrCodeConflict, ErrCodeConcurrencyConflict,
		ErrCodeInvalidState, ErrCodeBusinessRule,
		ErrCodeInsufficientCapacity, ErrCodeCapacityFull, ErrCodeAlreadyJoined, ErrCodeAlreadyCancelled,
		ErrCodeChannelUnavailable, ErrCodePaymentNotCompleted, ErrCodeGatewayFailure,
		ErrCodeVoucherNotUsable, ErrCodeVoucherExpired, ErrCodeVoucherAlreadyRedeemed,
		ErrCodeBadRequest, ErrCodeInvalidInput, ErrCodeInvalidJSON,
		ErrCodeRateLimited, ErrCodeTooManyRequests,
	}
	for _, code := range codes {
		status, ok := ErrorCodeHTTPStatus[code]
		assert.True(t, ok, "code %s missing from ErrorCodeHTTPStatus", code)
		assert.Greater(t, status, 0, "code %s", code)
		assert.Contains(t, code, "ERR_", "code %s should carry the ERR_ prefix", code)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Reservation not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code, "bare code should be normalized")
	assert.Equal(t, "Reservation not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Reservation not found", "req-123")

	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "invite_code", Message: "This field is required"},
		{Field: "adults", Message: "Must be greater than 0"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "invite_code", resp.Error.Details[0].Field)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	resp := NewErrorResponseWithHelp(ErrCodeUnauthorized, "Not authenticated", "req-001",
		"https://docs.example.com/errors/auth")

	require.NotNil(t, resp.Error)
	assert.Equal(t, "https://docs.example.com/errors/auth", resp.Error.Help)
}

func TestErrorResponseRoundTripsThroughJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Voucher not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	assert.False(t, resp.Error.Timestamp.Before(before))
	assert.False(t, resp.Error.Timestamp.After(after))
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"status": "CONFIRMED"})

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		pageSize  int
		wantPages int
		wantSize  int
	}{
		{"exact pages", 100, 10, 10, 10},
		{"partial last page", 101, 10, 11, 10},
		{"empty", 0, 10, 0, 10},
		{"under one page", 9, 10, 1, 10},
		{"boundary", 10, 10, 1, 10},
		{"zero page size defaults", 100, 0, 5, 20},
		{"negative page size defaults", 100, -1, 5, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta(nil, tt.total, 1, tt.pageSize)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, tt.wantPages, resp.Meta.TotalPages)
			assert.Equal(t, tt.wantSize, resp.Meta.PageSize)
			assert.Equal(t, tt.total, resp.Meta.Total)
		})
	}
}
