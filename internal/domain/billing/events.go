package billing

import (
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePayment     = "Payment"
	AggregateTypeGiftVoucher = "GiftVoucher"
)

// Event type constants
const (
	EventTypePaymentCompleted = "PaymentCompleted"
	EventTypePaymentRefunded  = "PaymentRefunded"
	EventTypeVoucherRedeemed  = "VoucherRedeemed"
)

// PaymentCompletedEvent is raised when a payment settles
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	ReservationID uuid.UUID       `json:"reservation_id"`
	Channel       PaymentChannel  `json:"channel"`
	ChargeAmount  decimal.Decimal `json:"charge_amount"`
	VoucherAmount decimal.Decimal `json:"voucher_amount"`
}

// NewPaymentCompletedEvent creates a new PaymentCompletedEvent
func NewPaymentCompletedEvent(p *Payment) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCompleted, p.ID, AggregateTypePayment),
		PaymentID:       p.ID,
		ReservationID:   p.ReservationID,
		Channel:         p.Channel,
		ChargeAmount:    p.ChargeAmount,
		VoucherAmount:   p.VoucherAmount,
	}
}

// PaymentRefundedEvent is raised when a refund settles
type PaymentRefundedEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID       `json:"payment_id"`
	ReservationID  uuid.UUID       `json:"reservation_id"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
}

// NewPaymentRefundedEvent creates a new PaymentRefundedEvent
func NewPaymentRefundedEvent(p *Payment) *PaymentRefundedEvent {
	return &PaymentRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRefunded, p.ID, AggregateTypePayment),
		PaymentID:       p.ID,
		ReservationID:   p.ReservationID,
		RefundedAmount:  p.RefundedAmount,
	}
}

// VoucherRedeemedEvent is raised when a voucher is bound to a user
type VoucherRedeemedEvent struct {
	shared.BaseDomainEvent
	VoucherID uuid.UUID `json:"voucher_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// NewVoucherRedeemedEvent creates a new VoucherRedeemedEvent
func NewVoucherRedeemedEvent(v *GiftVoucher, userID uuid.UUID) *VoucherRedeemedEvent {
	return &VoucherRedeemedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVoucherRedeemed, v.ID, AggregateTypeGiftVoucher),
		VoucherID:       v.ID,
		UserID:          userID,
	}
}
