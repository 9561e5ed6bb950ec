package models

import (
	"time"

	"github.com/farmeet/backend/internal/domain/reservation"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationModel is the persistence model for the Reservation aggregate root.
type ReservationModel struct {
	AggregateModel
	UserID      uuid.UUID                     `gorm:"type:uuid;not null;index"`
	EventID     uuid.UUID                     `gorm:"type:uuid;not null;index"`
	EventStart  time.Time                     `gorm:"not null;index"`
	Adults      int                           `gorm:"not null"`
	Children    int                           `gorm:"not null;default:0"`
	Infants     int                           `gorm:"not null;default:0"`
	TotalPrice  decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0"`
	Status      reservation.ReservationStatus `gorm:"type:varchar(20);not null;default:'PENDING_PAYMENT';index"`
	InviteCode  *string                       `gorm:"type:varchar(8);uniqueIndex"`
	ConfirmedAt *time.Time
	CancelledAt *time.Time
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (ReservationModel) TableName() string {
	return "reservations"
}

// ToDomain converts the persistence model to a domain Reservation entity.
func (m *ReservationModel) ToDomain() *reservation.Reservation {
	return &reservation.Reservation{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		UserID:      m.UserID,
		EventID:     m.EventID,
		EventStart:  m.EventStart,
		Adults:      m.Adults,
		Children:    m.Children,
		Infants:     m.Infants,
		TotalPrice:  m.TotalPrice,
		Status:      m.Status,
		InviteCode:  m.InviteCode,
		ConfirmedAt: m.ConfirmedAt,
		CancelledAt: m.CancelledAt,
		CompletedAt: m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Reservation entity.
func (m *ReservationModel) FromDomain(r *reservation.Reservation) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.UserID = r.UserID
	m.EventID = r.EventID
	m.EventStart = r.EventStart
	m.Adults = r.Adults
	m.Children = r.Children
	m.Infants = r.Infants
	m.TotalPrice = r.TotalPrice
	m.Status = r.Status
	m.InviteCode = r.InviteCode
	m.ConfirmedAt = r.ConfirmedAt
	m.CancelledAt = r.CancelledAt
	m.CompletedAt = r.CompletedAt
}

// ReservationModelFromDomain creates a new persistence model from a domain Reservation entity.
func ReservationModelFromDomain(r *reservation.Reservation) *ReservationModel {
	m := &ReservationModel{}
	m.FromDomain(r)
	return m
}

// ParticipantModel is the persistence model for the Participant entity.
type ParticipantModel struct {
	BaseModel
	ReservationID uuid.UUID                       `gorm:"type:uuid;not null;uniqueIndex:idx_participant_reservation_user,priority:1"`
	UserID        uuid.UUID                       `gorm:"type:uuid;not null;uniqueIndex:idx_participant_reservation_user,priority:2"`
	Category      reservation.ParticipantCategory `gorm:"type:varchar(10);not null"`
	JoinedAt      time.Time                       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ParticipantModel) TableName() string {
	return "reservation_participants"
}

// ToDomain converts the persistence model to a domain Participant entity.
func (m *ParticipantModel) ToDomain() *reservation.Participant {
	return &reservation.Participant{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ReservationID: m.ReservationID,
		UserID:        m.UserID,
		Category:      m.Category,
		JoinedAt:      m.JoinedAt,
	}
}

// FromDomain populates the persistence model from a domain Participant entity.
func (m *ParticipantModel) FromDomain(p *reservation.Participant) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ReservationID = p.ReservationID
	m.UserID = p.UserID
	m.Category = p.Category
	m.JoinedAt = p.JoinedAt
}

// ParticipantModelFromDomain creates a new persistence model from a domain Participant entity.
func ParticipantModelFromDomain(p *reservation.Participant) *ParticipantModel {
	m := &ParticipantModel{}
	m.FromDomain(p)
	return m
}
