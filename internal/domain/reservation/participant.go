package reservation

import (
	"time"

	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ParticipantCategory classifies a group member for sub-capacity checks
type ParticipantCategory string

const (
	CategoryAdult  ParticipantCategory = "ADULT"
	CategoryChild  ParticipantCategory = "CHILD"
	CategoryInfant ParticipantCategory = "INFANT"
)

// IsValid checks if the category is a valid ParticipantCategory
func (c ParticipantCategory) IsValid() bool {
	switch c {
	case CategoryAdult, CategoryChild, CategoryInfant:
		return true
	}
	return false
}

// String returns the string representation of ParticipantCategory
func (c ParticipantCategory) String() string {
	return string(c)
}

// Participant is a user who joined a reservation's group via invite code.
// At most one row exists per (reservation, user) pair.
type Participant struct {
	shared.BaseEntity
	ReservationID uuid.UUID
	UserID        uuid.UUID
	Category      ParticipantCategory
	JoinedAt      time.Time
}

// NewParticipant creates a participant row for a joining user
func NewParticipant(reservationID, userID uuid.UUID, category ParticipantCategory) (*Participant, error) {
	if reservationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESERVATION", "Reservation ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown participant category: "+string(category))
	}
	return &Participant{
		BaseEntity:    shared.NewBaseEntity(),
		ReservationID: reservationID,
		UserID:        userID,
		Category:      category,
		JoinedAt:      time.Now(),
	}, nil
}

// SeatsFor returns the number of group seats a reservation offers for a
// category. The owner implicitly occupies one adult seat, so the adult
// allowance is one less than the adult headcount.
func (r *Reservation) SeatsFor(category ParticipantCategory) int {
	switch category {
	case CategoryAdult:
		if r.Adults < 1 {
			return 0
		}
		return r.Adults - 1
	case CategoryChild:
		return r.Children
	case CategoryInfant:
		return r.Infants
	}
	return 0
}
