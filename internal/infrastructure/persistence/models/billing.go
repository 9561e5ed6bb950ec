package models

import (
	"time"

	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	AggregateModel
	ReservationID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	Channel           billing.PaymentChannel `gorm:"type:varchar(20);not null"`
	Status            billing.PaymentStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ChargeAmount      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	VoucherAmount     decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	VoucherID         *uuid.UUID             `gorm:"type:uuid;index"`
	RefundedAmount    decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	ExternalSessionID string                 `gorm:"type:varchar(255);index"`
	ExternalChargeID  string                 `gorm:"type:varchar(255)"`
	TransferDeadline  *time.Time
	PaidAt            *time.Time
	RefundedAt        *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ReservationID:     m.ReservationID,
		Channel:           m.Channel,
		Status:            m.Status,
		ChargeAmount:      m.ChargeAmount,
		VoucherAmount:     m.VoucherAmount,
		VoucherID:         m.VoucherID,
		RefundedAmount:    m.RefundedAmount,
		ExternalSessionID: m.ExternalSessionID,
		ExternalChargeID:  m.ExternalChargeID,
		TransferDeadline:  m.TransferDeadline,
		PaidAt:            m.PaidAt,
		RefundedAt:        m.RefundedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.ReservationID = p.ReservationID
	m.Channel = p.Channel
	m.Status = p.Status
	m.ChargeAmount = p.ChargeAmount
	m.VoucherAmount = p.VoucherAmount
	m.VoucherID = p.VoucherID
	m.RefundedAmount = p.RefundedAmount
	m.ExternalSessionID = p.ExternalSessionID
	m.ExternalChargeID = p.ExternalChargeID
	m.TransferDeadline = p.TransferDeadline
	m.PaidAt = p.PaidAt
	m.RefundedAt = p.RefundedAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// GiftVoucherModel is the persistence model for the GiftVoucher aggregate root.
type GiftVoucherModel struct {
	AggregateModel
	Code        string                `gorm:"type:varchar(32);not null;uniqueIndex"`
	FaceAmount  decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Balance     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status      billing.VoucherStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	OwnerUserID *uuid.UUID            `gorm:"type:uuid;index"`
	ExpiresAt   time.Time             `gorm:"not null;index"`
	ActivatedAt *time.Time
	RedeemedAt  *time.Time
}

// TableName returns the table name for GORM
func (GiftVoucherModel) TableName() string {
	return "gift_vouchers"
}

// ToDomain converts the persistence model to a domain GiftVoucher entity.
func (m *GiftVoucherModel) ToDomain() *billing.GiftVoucher {
	return &billing.GiftVoucher{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Code:        m.Code,
		FaceAmount:  m.FaceAmount,
		Balance:     m.Balance,
		Status:      m.Status,
		OwnerUserID: m.OwnerUserID,
		ExpiresAt:   m.ExpiresAt,
		ActivatedAt: m.ActivatedAt,
		RedeemedAt:  m.RedeemedAt,
	}
}

// FromDomain populates the persistence model from a domain GiftVoucher entity.
func (m *GiftVoucherModel) FromDomain(v *billing.GiftVoucher) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.Code = v.Code
	m.FaceAmount = v.FaceAmount
	m.Balance = v.Balance
	m.Status = v.Status
	m.OwnerUserID = v.OwnerUserID
	m.ExpiresAt = v.ExpiresAt
	m.ActivatedAt = v.ActivatedAt
	m.RedeemedAt = v.RedeemedAt
}

// GiftVoucherModelFromDomain creates a new persistence model from a domain GiftVoucher entity.
func GiftVoucherModelFromDomain(v *billing.GiftVoucher) *GiftVoucherModel {
	m := &GiftVoucherModel{}
	m.FromDomain(v)
	return m
}
