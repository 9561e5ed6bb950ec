package reservation

import (
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeReservation = "Reservation"

// Event type constants
const (
	EventTypeReservationCreated   = "ReservationCreated"
	EventTypeReservationConfirmed = "ReservationConfirmed"
	EventTypeReservationCancelled = "ReservationCancelled"
	EventTypeReservationExpired   = "ReservationExpired"
)

// ReservationCreatedEvent is raised when a new reservation is created
type ReservationCreatedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID       `json:"reservation_id"`
	UserID        uuid.UUID       `json:"user_id"`
	EventID       uuid.UUID       `json:"event_id"`
	TotalPeople   int             `json:"total_people"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// NewReservationCreatedEvent creates a new ReservationCreatedEvent
func NewReservationCreatedEvent(r *Reservation) *ReservationCreatedEvent {
	return &ReservationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationCreated, r.ID, AggregateTypeReservation),
		ReservationID:   r.ID,
		UserID:          r.UserID,
		EventID:         r.EventID,
		TotalPeople:     r.TotalPeople(),
		TotalPrice:      r.TotalPrice,
	}
}

// ReservationConfirmedEvent is raised when payment completes and the
// reservation is confirmed.
type ReservationConfirmedEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID `json:"reservation_id"`
	UserID        uuid.UUID `json:"user_id"`
	EventID       uuid.UUID `json:"event_id"`
}

// NewReservationConfirmedEvent creates a new ReservationConfirmedEvent
func NewReservationConfirmedEvent(r *Reservation) *ReservationConfirmedEvent {
	return &ReservationConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationConfirmed, r.ID, AggregateTypeReservation),
		ReservationID:   r.ID,
		UserID:          r.UserID,
		EventID:         r.EventID,
	}
}

// ReservationCancelledEvent is raised when a reservation is cancelled,
// by the owner or by the expiry sweep.
type ReservationCancelledEvent struct {
	shared.BaseDomainEvent
	ReservationID uuid.UUID `json:"reservation_id"`
	UserID        uuid.UUID `json:"user_id"`
	EventID       uuid.UUID `json:"event_id"`
	TotalPeople   int       `json:"total_people"`
}

// NewReservationCancelledEvent creates a new ReservationCancelledEvent
func NewReservationCancelledEvent(r *Reservation) *ReservationCancelledEvent {
	return &ReservationCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationCancelled, r.ID, AggregateTypeReservation),
		ReservationID:   r.ID,
		UserID:          r.UserID,
		EventID:         r.EventID,
		TotalPeople:     r.TotalPeople(),
	}
}
