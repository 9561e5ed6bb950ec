package reservation

import (
	"time"

	"github.com/farmeet/backend/internal/domain/catalog"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/farmeet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationStatus represents the lifecycle status of a reservation
type ReservationStatus string

const (
	StatusPendingPayment   ReservationStatus = "PENDING_PAYMENT"
	StatusAwaitingTransfer ReservationStatus = "AWAITING_TRANSFER"
	StatusPaymentFailed    ReservationStatus = "PAYMENT_FAILED"
	StatusConfirmed        ReservationStatus = "CONFIRMED"
	StatusCancelled        ReservationStatus = "CANCELLED"
	StatusCompleted        ReservationStatus = "COMPLETED"
)

// IsValid checks if the status is a valid ReservationStatus
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusAwaitingTransfer, StatusPaymentFailed,
		StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of ReservationStatus
func (s ReservationStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	switch s {
	case StatusPendingPayment:
		return target == StatusAwaitingTransfer || target == StatusConfirmed ||
			target == StatusPaymentFailed || target == StatusCancelled
	case StatusAwaitingTransfer:
		return target == StatusConfirmed || target == StatusPaymentFailed ||
			target == StatusCancelled
	case StatusPaymentFailed:
		return target == StatusCancelled
	case StatusConfirmed:
		return target == StatusCompleted || target == StatusCancelled
	case StatusCancelled, StatusCompleted:
		return false // Terminal states
	}
	return false
}

// IsActive reports whether the reservation still holds its seats
func (s ReservationStatus) IsActive() bool {
	switch s {
	case StatusPendingPayment, StatusAwaitingTransfer, StatusConfirmed:
		return true
	}
	return false
}

// PendingStatuses are the statuses in which a reservation is waiting on
// payment and is eligible for automatic expiry.
func PendingStatuses() []ReservationStatus {
	return []ReservationStatus{StatusPendingPayment, StatusAwaitingTransfer}
}

// ActiveStatuses are the statuses counted against event capacity
func ActiveStatuses() []ReservationStatus {
	return []ReservationStatus{StatusPendingPayment, StatusAwaitingTransfer, StatusConfirmed}
}

// HistoryStatuses are the statuses shown in a user's reservation history
func HistoryStatuses() []ReservationStatus {
	return []ReservationStatus{StatusPaymentFailed, StatusCancelled, StatusCompleted}
}

// Reservation represents a booking of seats at an experience event.
// The headcounts recorded here are exactly the amount deducted from
// the event's remaining capacity; they are restored once, on cancellation.
type Reservation struct {
	shared.BaseAggregateRoot
	UserID      uuid.UUID
	EventID     uuid.UUID
	EventStart  time.Time
	Adults      int
	Children    int
	Infants     int
	TotalPrice  decimal.Decimal
	Status      ReservationStatus
	InviteCode  *string
	ConfirmedAt *time.Time
	CancelledAt *time.Time
	CompletedAt *time.Time
}

// NewReservation creates a reservation against an event snapshot, computing
// the total price as adults at the adult rate plus children at the child rate.
// Infants occupy a seat but are free of charge.
func NewReservation(userID uuid.UUID, event *catalog.ExperienceEvent, adults, children, infants int) (*Reservation, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if event == nil {
		return nil, shared.NewDomainError("INVALID_EVENT", "Event cannot be nil")
	}
	if adults < 1 {
		return nil, shared.NewDomainError("INVALID_HEADCOUNT", "At least one adult is required")
	}
	if children < 0 || infants < 0 {
		return nil, shared.NewDomainError("INVALID_HEADCOUNT", "Headcounts cannot be negative")
	}

	total := event.AdultPrice.Mul(decimal.NewFromInt(int64(adults))).
		Add(event.EffectiveChildPrice().Mul(decimal.NewFromInt(int64(children))))

	r := &Reservation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		EventID:           event.ID,
		EventStart:        event.StartAt,
		Adults:            adults,
		Children:          children,
		Infants:           infants,
		TotalPrice:        total,
		Status:            StatusPendingPayment,
	}

	r.AddDomainEvent(NewReservationCreatedEvent(r))

	return r, nil
}

// TotalPeople returns the number of seats this reservation holds
func (r *Reservation) TotalPeople() int {
	return r.Adults + r.Children + r.Infants
}

// TotalPriceMoney returns the total price as a Money value object
func (r *Reservation) TotalPriceMoney() valueobject.Money {
	return valueobject.NewMoneyJPY(r.TotalPrice)
}

// IsOwner reports whether the given user owns this reservation
func (r *Reservation) IsOwner(userID uuid.UUID) bool {
	return r.UserID == userID
}

// Confirm transitions the reservation to CONFIRMED after payment completion
func (r *Reservation) Confirm() error {
	if !r.Status.CanTransitionTo(StatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", "Reservation cannot be confirmed from status "+r.Status.String())
	}
	now := time.Now()
	r.Status = StatusConfirmed
	r.ConfirmedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewReservationConfirmedEvent(r))

	return nil
}

// AwaitTransfer moves the reservation to AWAITING_TRANSFER when a bank
// transfer payment is initiated.
func (r *Reservation) AwaitTransfer() error {
	if !r.Status.CanTransitionTo(StatusAwaitingTransfer) {
		return shared.NewDomainError("INVALID_STATE", "Reservation cannot await transfer from status "+r.Status.String())
	}
	r.Status = StatusAwaitingTransfer
	r.UpdatedAt = time.Now()
	return nil
}

// MarkPaymentFailed records a failed payment attempt
func (r *Reservation) MarkPaymentFailed() error {
	if !r.Status.CanTransitionTo(StatusPaymentFailed) {
		return shared.NewDomainError("INVALID_STATE", "Reservation cannot fail payment from status "+r.Status.String())
	}
	r.Status = StatusPaymentFailed
	r.UpdatedAt = time.Now()
	return nil
}

// Cancel transitions the reservation to CANCELLED
func (r *Reservation) Cancel() error {
	if r.Status == StatusCancelled {
		return shared.ErrAlreadyCancelled
	}
	if !r.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Reservation cannot be cancelled from status "+r.Status.String())
	}
	now := time.Now()
	r.Status = StatusCancelled
	r.CancelledAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewReservationCancelledEvent(r))

	return nil
}

// Complete transitions a confirmed reservation to COMPLETED once the
// event has taken place.
func (r *Reservation) Complete() error {
	if !r.Status.CanTransitionTo(StatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", "Reservation cannot be completed from status "+r.Status.String())
	}
	now := time.Now()
	r.Status = StatusCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now
	return nil
}

// NewInviteCode derives an opaque 8-character invite token
func NewInviteCode() string {
	return uuid.New().String()[:8]
}
