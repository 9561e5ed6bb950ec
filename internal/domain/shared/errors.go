package shared

// DomainError is a business-rule violation carrying a stable machine-readable
// code. The HTTP layer maps codes to status codes; messages are safe to show
// to clients.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Errors shared across domains.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Reservation lifecycle errors
var (
	ErrInsufficientCapacity = NewDomainError("INSUFFICIENT_CAPACITY", "Not enough remaining capacity for the event")
	ErrAlreadyCancelled     = NewDomainError("ALREADY_CANCELLED", "Reservation is already cancelled")
)

// Participant roster errors
var (
	ErrAlreadyJoined        = NewDomainError("ALREADY_JOINED", "User has already joined this reservation")
	ErrOwnerCannotJoin      = NewDomainError("OWNER_CANNOT_JOIN", "Reservation owner cannot join as a participant")
	ErrCapacityFull         = NewDomainError("CAPACITY_FULL", "No remaining seats for this participant category")
	ErrReservationCancelled = NewDomainError("RESERVATION_CANCELLED", "Cannot join a cancelled reservation")
	ErrNotParticipant       = NewDomainError("NOT_PARTICIPANT", "User is not a participant of this reservation")
)

// Payment and voucher errors
var (
	ErrChannelUnavailable     = NewDomainError("CHANNEL_UNAVAILABLE", "Payment channel unavailable this close to the event")
	ErrPaymentNotCompleted    = NewDomainError("PAYMENT_NOT_COMPLETED", "Payment has not been completed")
	ErrGatewayFailure         = NewDomainError("GATEWAY_FAILURE", "Payment gateway call failed")
	ErrVoucherNotOwner        = NewDomainError("VOUCHER_NOT_OWNER", "Gift voucher belongs to another user")
	ErrVoucherNotUsable       = NewDomainError("VOUCHER_NOT_USABLE", "Gift voucher cannot be used")
	ErrVoucherExpired         = NewDomainError("VOUCHER_EXPIRED", "Gift voucher has expired")
	ErrVoucherAlreadyRedeemed = NewDomainError("VOUCHER_ALREADY_REDEEMED", "Gift voucher is already registered to a user")
	ErrVoucherNotActivated    = NewDomainError("VOUCHER_NOT_ACTIVATED", "Gift voucher has not been activated yet")
)
