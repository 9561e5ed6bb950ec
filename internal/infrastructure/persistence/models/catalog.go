package models

import (
	"time"

	"github.com/farmeet/backend/internal/domain/catalog"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExperienceEventModel is the persistence model for the ExperienceEvent aggregate root.
type ExperienceEventModel struct {
	AggregateModel
	FarmID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	OwnerUserID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	Title             string           `gorm:"type:varchar(200);not null"`
	StartAt           time.Time        `gorm:"not null;index"`
	Capacity          int              `gorm:"not null"`
	RemainingCapacity int              `gorm:"not null"`
	AdultPrice        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ChildPrice        *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (ExperienceEventModel) TableName() string {
	return "experience_events"
}

// ToDomain converts the persistence model to a domain ExperienceEvent entity.
func (m *ExperienceEventModel) ToDomain() *catalog.ExperienceEvent {
	return &catalog.ExperienceEvent{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		FarmID:            m.FarmID,
		OwnerUserID:       m.OwnerUserID,
		Title:             m.Title,
		StartAt:           m.StartAt,
		Capacity:          m.Capacity,
		RemainingCapacity: m.RemainingCapacity,
		AdultPrice:        m.AdultPrice,
		ChildPrice:        m.ChildPrice,
	}
}

// FromDomain populates the persistence model from a domain ExperienceEvent entity.
func (m *ExperienceEventModel) FromDomain(e *catalog.ExperienceEvent) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.FarmID = e.FarmID
	m.OwnerUserID = e.OwnerUserID
	m.Title = e.Title
	m.StartAt = e.StartAt
	m.Capacity = e.Capacity
	m.RemainingCapacity = e.RemainingCapacity
	m.AdultPrice = e.AdultPrice
	m.ChildPrice = e.ChildPrice
}

// ExperienceEventModelFromDomain creates a new persistence model from a domain ExperienceEvent entity.
func ExperienceEventModelFromDomain(e *catalog.ExperienceEvent) *ExperienceEventModel {
	m := &ExperienceEventModel{}
	m.FromDomain(e)
	return m
}
