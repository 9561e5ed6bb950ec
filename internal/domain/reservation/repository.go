package reservation

import (
	"context"
	"time"

	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReservationRepository defines the interface for reservation persistence
type ReservationRepository interface {
	// FindByID finds a reservation by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// FindByIDForUpdate finds a reservation and takes a row lock on it for
	// the duration of the surrounding transaction. Roster mutations lock the
	// reservation first so concurrent joins serialize; a plain count check
	// would let two transactions both see the last seat as free.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// FindByInviteCode finds a reservation by its invite code
	FindByInviteCode(ctx context.Context, code string) (*Reservation, error)

	// FindByUser finds a user's reservations restricted to the given statuses
	FindByUser(ctx context.Context, userID uuid.UUID, statuses []ReservationStatus, filter shared.Filter) ([]Reservation, error)

	// FindByEvent finds reservations for an event restricted to the given statuses
	FindByEvent(ctx context.Context, eventID uuid.UUID, statuses []ReservationStatus, filter shared.Filter) ([]Reservation, error)

	// FindConfirmedStartedBefore finds CONFIRMED reservations whose event
	// started before the given instant. Used by the completion sweep.
	FindConfirmedStartedBefore(ctx context.Context, instant time.Time, limit int) ([]Reservation, error)

	// FindPendingExpired finds reservations still in a pending status that
	// were created before createdBefore or whose event starts before
	// startingBefore. Used by the expiry sweep.
	FindPendingExpired(ctx context.Context, createdBefore, startingBefore time.Time, limit int) ([]Reservation, error)

	// Save creates or updates a reservation
	Save(ctx context.Context, r *Reservation) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, r *Reservation) error

	// UpdateStatusIf transitions the reservation to the target status only if
	// its current status is in the from set. Returns true when this call
	// performed the transition, false when another actor got there first.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []ReservationStatus, to ReservationStatus) (bool, error)

	// SetInviteCode sets the invite code only if none is set yet; returns the
	// stored code either way so the code stays stable under concurrent calls.
	SetInviteCode(ctx context.Context, id uuid.UUID, code string) (string, error)
}

// ParticipantRepository defines the interface for participant persistence
type ParticipantRepository interface {
	// FindByReservation lists all participants of a reservation
	FindByReservation(ctx context.Context, reservationID uuid.UUID) ([]Participant, error)

	// FindByReservationAndUser finds a user's participant row, if any
	FindByReservationAndUser(ctx context.Context, reservationID, userID uuid.UUID) (*Participant, error)

	// CountByCategory counts a reservation's participants in a category
	CountByCategory(ctx context.Context, reservationID uuid.UUID, category ParticipantCategory) (int64, error)

	// Save creates a participant row
	Save(ctx context.Context, p *Participant) error

	// Delete removes a participant row
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByReservationAndUser removes a user's participant row; returns
	// true when a row was deleted.
	DeleteByReservationAndUser(ctx context.Context, reservationID, userID uuid.UUID) (bool, error)
}
