package catalog

import (
	"time"

	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExperienceEvent is a bookable farm-experience session. The catalog service
// owns creation and editing; this core only reads price/schedule snapshots and
// mutates the remaining-capacity counter through the repository's atomic
// reserve/release operations.
type ExperienceEvent struct {
	shared.BaseAggregateRoot
	FarmID            uuid.UUID
	OwnerUserID       uuid.UUID
	Title             string
	StartAt           time.Time
	Capacity          int
	RemainingCapacity int
	AdultPrice        decimal.Decimal
	ChildPrice        *decimal.Decimal
}

// NewExperienceEvent creates an event snapshot with full remaining capacity.
// Used by upstream seeding and tests; the catalog service is the real owner.
func NewExperienceEvent(farmID, ownerUserID uuid.UUID, title string, startAt time.Time, capacity int, adultPrice decimal.Decimal, childPrice *decimal.Decimal) (*ExperienceEvent, error) {
	if farmID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FARM", "Farm ID cannot be empty")
	}
	if ownerUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner user ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Event title cannot be empty")
	}
	if capacity <= 0 {
		return nil, shared.NewDomainError("INVALID_CAPACITY", "Event capacity must be positive")
	}
	if adultPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Adult price cannot be negative")
	}
	if childPrice != nil && childPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Child price cannot be negative")
	}

	return &ExperienceEvent{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FarmID:            farmID,
		OwnerUserID:       ownerUserID,
		Title:             title,
		StartAt:           startAt,
		Capacity:          capacity,
		RemainingCapacity: capacity,
		AdultPrice:        adultPrice,
		ChildPrice:        childPrice,
	}, nil
}

// EffectiveChildPrice returns the child price, falling back to the adult price
// when no discounted child rate is configured.
func (e *ExperienceEvent) EffectiveChildPrice() decimal.Decimal {
	if e.ChildPrice != nil {
		return *e.ChildPrice
	}
	return e.AdultPrice
}

// HasStartedBy reports whether the event has started at the given instant
func (e *ExperienceEvent) HasStartedBy(now time.Time) bool {
	return !e.StartAt.After(now)
}
