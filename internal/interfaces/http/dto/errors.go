package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Booking error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInsufficientCapacity is used when an event has too few seats left
	ErrCodeInsufficientCapacity = "ERR_INSUFFICIENT_CAPACITY"
	// ErrCodeCapacityFull is used when a roster category has no seats left
	ErrCodeCapacityFull = "ERR_CAPACITY_FULL"
	// ErrCodeAlreadyJoined is used when a user is already on a roster
	ErrCodeAlreadyJoined = "ERR_ALREADY_JOINED"
	// ErrCodeAlreadyCancelled is used when cancelling a cancelled reservation
	ErrCodeAlreadyCancelled = "ERR_ALREADY_CANCELLED"
)

// Payment and voucher error codes
const (
	// ErrCodeChannelUnavailable is used when a payment channel is closed for the event
	ErrCodeChannelUnavailable = "ERR_CHANNEL_UNAVAILABLE"
	// ErrCodePaymentNotCompleted is used when the gateway has not settled the charge
	ErrCodePaymentNotCompleted = "ERR_PAYMENT_NOT_COMPLETED"
	// ErrCodeGatewayFailure is used when the payment gateway call fails
	ErrCodeGatewayFailure = "ERR_GATEWAY_FAILURE"
	// ErrCodeVoucherNotUsable is used when a voucher cannot cover the charge
	ErrCodeVoucherNotUsable = "ERR_VOUCHER_NOT_USABLE"
	// ErrCodeVoucherExpired is used when a voucher is past its expiry
	ErrCodeVoucherExpired = "ERR_VOUCHER_EXPIRED"
	// ErrCodeVoucherAlreadyRedeemed is used when a voucher already has an owner
	ErrCodeVoucherAlreadyRedeemed = "ERR_VOUCHER_ALREADY_REDEEMED"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTooManyRequests is an alias for rate limiting
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Booking errors
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:         http.StatusUnprocessableEntity,
	ErrCodeInsufficientCapacity: http.StatusUnprocessableEntity,
	ErrCodeCapacityFull:         http.StatusUnprocessableEntity,
	ErrCodeAlreadyJoined:        http.StatusConflict,
	ErrCodeAlreadyCancelled:     http.StatusConflict,

	// Payment and voucher errors
	ErrCodeChannelUnavailable:     http.StatusUnprocessableEntity,
	ErrCodePaymentNotCompleted:    http.StatusUnprocessableEntity,
	ErrCodeGatewayFailure:         http.StatusBadGateway,
	ErrCodeVoucherNotUsable:       http.StatusUnprocessableEntity,
	ErrCodeVoucherExpired:         http.StatusUnprocessableEntity,
	ErrCodeVoucherAlreadyRedeemed: http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the wire format
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":                ErrCodeNotFound,
	"ALREADY_EXISTS":           ErrCodeAlreadyExists,
	"INVALID_INPUT":            ErrCodeInvalidInput,
	"INVALID_STATE":            ErrCodeInvalidState,
	"INVALID_SCOPE":            ErrCodeInvalidInput,
	"INVALID_AMOUNT":           ErrCodeInvalidInput,
	"INVALID_CAPACITY":         ErrCodeInvalidInput,
	"INVALID_CATEGORY":         ErrCodeInvalidInput,
	"INVALID_CHANNEL":          ErrCodeInvalidInput,
	"INVALID_CODE":             ErrCodeInvalidInput,
	"INVALID_EVENT":            ErrCodeInvalidInput,
	"INVALID_FARM":             ErrCodeInvalidInput,
	"INVALID_HEADCOUNT":        ErrCodeInvalidInput,
	"INVALID_OWNER":            ErrCodeInvalidInput,
	"INVALID_PRICE":            ErrCodeInvalidInput,
	"INVALID_RESERVATION":      ErrCodeInvalidInput,
	"INVALID_TITLE":            ErrCodeInvalidInput,
	"INVALID_USER":             ErrCodeInvalidInput,
	"INVALID_VOUCHER":          ErrCodeInvalidInput,
	"EVENT_STARTED":            ErrCodeInvalidState,
	"PAYMENT_EXISTS":           ErrCodeAlreadyExists,
	"UNAUTHORIZED":             ErrCodeUnauthorized,
	"FORBIDDEN":                ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":     ErrCodeConcurrencyConflict,
	"OPTIMISTIC_LOCK_ERROR":    ErrCodeConcurrencyConflict,
	"INSUFFICIENT_CAPACITY":    ErrCodeInsufficientCapacity,
	"CAPACITY_FULL":            ErrCodeCapacityFull,
	"ALREADY_JOINED":           ErrCodeAlreadyJoined,
	"ALREADY_CANCELLED":        ErrCodeAlreadyCancelled,
	"OWNER_CANNOT_JOIN":        ErrCodeBusinessRule,
	"RESERVATION_CANCELLED":    ErrCodeInvalidState,
	"NOT_PARTICIPANT":          ErrCodeNotFound,
	"CHANNEL_UNAVAILABLE":      ErrCodeChannelUnavailable,
	"PAYMENT_NOT_COMPLETED":    ErrCodePaymentNotCompleted,
	"GATEWAY_FAILURE":          ErrCodeGatewayFailure,
	"VOUCHER_NOT_OWNER":        ErrCodeForbidden,
	"VOUCHER_NOT_USABLE":       ErrCodeVoucherNotUsable,
	"VOUCHER_EXPIRED":          ErrCodeVoucherExpired,
	"VOUCHER_ALREADY_REDEEMED": ErrCodeVoucherAlreadyRedeemed,
	"VOUCHER_NOT_ACTIVATED":    ErrCodeVoucherNotUsable,
	"VALIDATION_ERROR":         ErrCodeValidation,
	"BAD_REQUEST":              ErrCodeBadRequest,
	"INTERNAL_ERROR":           ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
