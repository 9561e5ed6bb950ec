package persistence

import (
	"context"
	"errors"

	"github.com/farmeet/backend/internal/domain/reservation"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/farmeet/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormParticipantRepository implements reservation.ParticipantRepository using GORM
type GormParticipantRepository struct {
	db *gorm.DB
}

// NewGormParticipantRepository creates a new GormParticipantRepository
func NewGormParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	return &GormParticipantRepository{db: db}
}

// FindByReservation finds all participants of a reservation
func (r *GormParticipantRepository) FindByReservation(ctx context.Context, reservationID uuid.UUID) ([]reservation.Participant, error) {
	var participantModels []models.ParticipantModel
	if err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("joined_at ASC").
		Find(&participantModels).Error; err != nil {
		return nil, err
	}
	participants := make([]reservation.Participant, len(participantModels))
	for i := range participantModels {
		participants[i] = *participantModels[i].ToDomain()
	}
	return participants, nil
}

// FindByReservationAndUser finds a user's membership in a reservation's group
func (r *GormParticipantRepository) FindByReservationAndUser(ctx context.Context, reservationID, userID uuid.UUID) (*reservation.Participant, error) {
	var model models.ParticipantModel
	if err := r.db.WithContext(ctx).
		Where("reservation_id = ? AND user_id = ?", reservationID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountByCategory counts a reservation's participants in one category
func (r *GormParticipantRepository) CountByCategory(ctx context.Context, reservationID uuid.UUID, category reservation.ParticipantCategory) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ParticipantModel{}).
		Where("reservation_id = ? AND category = ?", reservationID, category).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a participant. The unique index on
// (reservation_id, user_id) rejects a second membership at the database
// level even when two joins race past the application check.
func (r *GormParticipantRepository) Save(ctx context.Context, p *reservation.Participant) error {
	model := models.ParticipantModelFromDomain(p)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyJoined
		}
		return err
	}
	return nil
}

// Delete deletes a participant
func (r *GormParticipantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ParticipantModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByReservationAndUser removes a user from a reservation's group.
// Returns false when the user was not a member.
func (r *GormParticipantRepository) DeleteByReservationAndUser(ctx context.Context, reservationID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Delete(&models.ParticipantModel{}, "reservation_id = ? AND user_id = ?", reservationID, userID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
