package catalog

import (
	"context"

	"github.com/google/uuid"
)

// EventRepository is the port for event rows backing reservations. Capacity
// mutation is intentionally not exposed as load-modify-save; ReserveCapacity
// and ReleaseCapacity must be single conditional statements so two concurrent
// reservations cannot both claim the last seat.
type EventRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ExperienceEvent, error)
	// ReserveCapacity atomically decrements remaining capacity by seats.
	// Returns shared.ErrInsufficientCapacity when fewer seats remain.
	ReserveCapacity(ctx context.Context, id uuid.UUID, seats int) error
	// ReleaseCapacity atomically increments remaining capacity by seats,
	// capped at the event's configured capacity.
	ReleaseCapacity(ctx context.Context, id uuid.UUID, seats int) error
	Save(ctx context.Context, event *ExperienceEvent) error
}
