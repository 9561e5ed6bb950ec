package persistence

import (
	"context"
	"errors"

	"github.com/farmeet/backend/internal/domain/catalog"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/farmeet/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEventRepository implements catalog.EventRepository using GORM
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// FindByID finds an experience event by its ID
func (r *GormEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ExperienceEvent, error) {
	var model models.ExperienceEventModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ReserveCapacity atomically takes seats from an event's remaining capacity.
// The WHERE guard makes the decrement fail instead of going negative when
// two reservations race for the last seats.
func (r *GormEventRepository) ReserveCapacity(ctx context.Context, id uuid.UUID, seats int) error {
	if seats <= 0 {
		return shared.NewDomainError("INVALID_SEATS", "Seat count must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&models.ExperienceEventModel{}).
		Where("id = ? AND remaining_capacity >= ?", id, seats).
		Update("remaining_capacity", gorm.Expr("remaining_capacity - ?", seats))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.ExperienceEventModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrInsufficientCapacity
	}
	return nil
}

// ReleaseCapacity returns seats to an event, capped at the event's total
// capacity so repeated releases cannot overflow it.
func (r *GormEventRepository) ReleaseCapacity(ctx context.Context, id uuid.UUID, seats int) error {
	if seats <= 0 {
		return shared.NewDomainError("INVALID_SEATS", "Seat count must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&models.ExperienceEventModel{}).
		Where("id = ?", id).
		Update("remaining_capacity", gorm.Expr("LEAST(capacity, remaining_capacity + ?)", seats))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Save creates or updates an experience event
func (r *GormEventRepository) Save(ctx context.Context, event *catalog.ExperienceEvent) error {
	model := models.ExperienceEventModelFromDomain(event)
	return r.db.WithContext(ctx).Save(model).Error
}
