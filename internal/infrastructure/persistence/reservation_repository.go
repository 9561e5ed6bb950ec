package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/farmeet/backend/internal/domain/reservation"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/farmeet/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReservationRepository implements reservation.ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID finds a reservation by its ID
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var model models.ReservationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a reservation under SELECT ... FOR UPDATE. Callers
// must run inside a transaction; the lock is held until it ends. Outside a
// transaction the lock is released immediately and provides no exclusion.
func (r *GormReservationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var model models.ReservationModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInviteCode finds a reservation by its invite code
func (r *GormReservationRepository) FindByInviteCode(ctx context.Context, code string) (*reservation.Reservation, error) {
	var model models.ReservationModel
	if err := r.db.WithContext(ctx).First(&model, "invite_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser finds a user's reservations, optionally restricted to a status set
func (r *GormReservationRepository) FindByUser(ctx context.Context, userID uuid.UUID, statuses []reservation.ReservationStatus, filter shared.Filter) ([]reservation.Reservation, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("user_id = ?", userID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	return r.findAll(r.applyFilter(query, filter))
}

// FindByEvent finds an event's reservations, optionally restricted to a status set
func (r *GormReservationRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, statuses []reservation.ReservationStatus, filter shared.Filter) ([]reservation.Reservation, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("event_id = ?", eventID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	return r.findAll(r.applyFilter(query, filter))
}

// FindConfirmedStartedBefore finds confirmed reservations whose event has
// started by the given instant. Used by the completion sweep.
func (r *GormReservationRepository) FindConfirmedStartedBefore(ctx context.Context, instant time.Time, limit int) ([]reservation.Reservation, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("status = ? AND event_start <= ?", reservation.StatusConfirmed, instant).
		Order("event_start ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.findAll(query)
}

// FindPendingExpired finds unpaid reservations that have either aged past the
// payment window or whose event is about to start. Used by the expiry sweep.
func (r *GormReservationRepository) FindPendingExpired(ctx context.Context, createdBefore, startingBefore time.Time, limit int) ([]reservation.Reservation, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("status IN ?", reservation.PendingStatuses()).
		Where("created_at < ? OR event_start <= ?", createdBefore, startingBefore).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.findAll(query)
}

// Save creates or updates a reservation
func (r *GormReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	model := models.ReservationModelFromDomain(res)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a reservation with optimistic locking (version check).
// Returns error if the version has changed (concurrent modification).
func (r *GormReservationRepository) SaveWithLock(ctx context.Context, res *reservation.Reservation) error {
	model := models.ReservationModelFromDomain(res)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", res.ID, res.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The reservation has been modified by another transaction")
	}
	return nil
}

// UpdateStatusIf transitions a reservation's status only if its current
// status is in the from set. Returns false when another writer got there
// first; the timestamp column for the target status is stamped in the same
// statement.
func (r *GormReservationRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []reservation.ReservationStatus, to reservation.ReservationStatus) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	switch to {
	case reservation.StatusConfirmed:
		updates["confirmed_at"] = time.Now()
	case reservation.StatusCancelled:
		updates["cancelled_at"] = time.Now()
	case reservation.StatusCompleted:
		updates["completed_at"] = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetInviteCode assigns an invite code to a reservation that does not have
// one yet. When a concurrent request already assigned a code, the stored
// code is returned instead of the candidate.
func (r *GormReservationRepository) SetInviteCode(ctx context.Context, id uuid.UUID, code string) (string, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("id = ? AND invite_code IS NULL", id).
		Update("invite_code", code)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected > 0 {
		return code, nil
	}

	var model models.ReservationModel
	if err := r.db.WithContext(ctx).Select("invite_code").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	if model.InviteCode == nil {
		return "", shared.NewDomainError("INVITE_CODE_UNSET", "Invite code could not be assigned")
	}
	return *model.InviteCode, nil
}

func (r *GormReservationRepository) findAll(query *gorm.DB) ([]reservation.Reservation, error) {
	var reservationModels []models.ReservationModel
	if err := query.Find(&reservationModels).Error; err != nil {
		return nil, err
	}
	reservations := make([]reservation.Reservation, len(reservationModels))
	for i := range reservationModels {
		reservations[i] = *reservationModels[i].ToDomain()
	}
	return reservations, nil
}

// applyFilter applies pagination and ordering to the query
func (r *GormReservationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	orderBy := ValidateSortField(filter.OrderBy, ReservationSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}
