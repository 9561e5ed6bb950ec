package billing

import (
	"time"

	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/farmeet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentChannel represents how the customer pays
type PaymentChannel string

const (
	ChannelCard         PaymentChannel = "CARD"
	ChannelPayPay       PaymentChannel = "PAYPAY"
	ChannelBankTransfer PaymentChannel = "BANK_TRANSFER"
)

// IsValid checks if the channel is a valid PaymentChannel
func (c PaymentChannel) IsValid() bool {
	switch c {
	case ChannelCard, ChannelPayPay, ChannelBankTransfer:
		return true
	}
	return false
}

// String returns the string representation of PaymentChannel
func (c PaymentChannel) String() string {
	return string(c)
}

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusCompleted         PaymentStatus = "COMPLETED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusCancelled         PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusPartiallyRefunded, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusCompleted || target == PaymentStatusFailed ||
			target == PaymentStatusCancelled
	case PaymentStatusCompleted:
		return target == PaymentStatusRefunded || target == PaymentStatusPartiallyRefunded
	case PaymentStatusPartiallyRefunded:
		return target == PaymentStatusRefunded
	case PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusCancelled:
		return false // Terminal states
	}
	return false
}

// Payment represents the single payment backing a reservation.
// The charged amount plus the voucher-applied amount always equals the
// reservation's total price; only the charged portion ever reaches a gateway
// and only the charged portion is refundable.
type Payment struct {
	shared.BaseAggregateRoot
	ReservationID     uuid.UUID
	Channel           PaymentChannel
	Status            PaymentStatus
	ChargeAmount      decimal.Decimal
	VoucherAmount     decimal.Decimal
	VoucherID         *uuid.UUID
	RefundedAmount    decimal.Decimal
	ExternalSessionID string
	ExternalChargeID  string
	TransferDeadline  *time.Time
	PaidAt            *time.Time
	RefundedAt        *time.Time
}

// NewPayment creates a pending payment for a reservation. voucherAmount is
// the portion already reserved against a gift voucher; the remainder is
// charged through the channel.
func NewPayment(reservationID uuid.UUID, channel PaymentChannel, totalPrice, voucherAmount decimal.Decimal, voucherID *uuid.UUID) (*Payment, error) {
	if reservationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESERVATION", "Reservation ID cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Unknown payment channel: "+string(channel))
	}
	if totalPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total price cannot be negative")
	}
	if voucherAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Voucher amount cannot be negative")
	}
	if voucherAmount.GreaterThan(totalPrice) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Voucher amount cannot exceed the total price")
	}
	if voucherAmount.IsPositive() && voucherID == nil {
		return nil, shared.NewDomainError("INVALID_VOUCHER", "Voucher ID is required when a voucher amount is applied")
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReservationID:     reservationID,
		Channel:           channel,
		Status:            PaymentStatusPending,
		ChargeAmount:      totalPrice.Sub(voucherAmount),
		VoucherAmount:     voucherAmount,
		VoucherID:         voucherID,
		RefundedAmount:    decimal.Zero,
	}, nil
}

// ComputeTransferDeadline returns the date by which a bank transfer must
// arrive: seven days from now, pulled in to three days before the event.
// Returns ErrChannelUnavailable when that leaves less than one full day,
// since the transfer could not clear in time.
func ComputeTransferDeadline(now, eventStart time.Time) (time.Time, error) {
	deadline := now.Add(7 * 24 * time.Hour)
	if latest := eventStart.Add(-3 * 24 * time.Hour); latest.Before(deadline) {
		deadline = latest
	}
	if deadline.Before(now.Add(24 * time.Hour)) {
		return time.Time{}, shared.ErrChannelUnavailable
	}
	return deadline, nil
}

// SetTransferDeadline records the bank transfer deadline
func (p *Payment) SetTransferDeadline(deadline time.Time) {
	p.TransferDeadline = &deadline
	p.UpdatedAt = time.Now()
}

// IsZeroCharge reports whether the voucher covers the full price, so no
// gateway interaction is needed.
func (p *Payment) IsZeroCharge() bool {
	return p.ChargeAmount.IsZero()
}

// ChargeAmountMoney returns the charged portion as a Money value object
func (p *Payment) ChargeAmountMoney() valueobject.Money {
	return valueobject.NewMoneyJPY(p.ChargeAmount)
}

// AttachSession records the gateway checkout session backing this payment
func (p *Payment) AttachSession(sessionID string) {
	p.ExternalSessionID = sessionID
	p.UpdatedAt = time.Now()
}

// MarkCompleted records a successful payment
func (p *Payment) MarkCompleted(externalChargeID string) error {
	if p.Status == PaymentStatusCompleted {
		return nil // Re-confirmation is a no-op
	}
	if !p.Status.CanTransitionTo(PaymentStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", "Payment cannot complete from status "+p.Status.String())
	}
	now := time.Now()
	p.Status = PaymentStatusCompleted
	p.ExternalChargeID = externalChargeID
	p.PaidAt = &now
	p.UpdatedAt = now
	return nil
}

// MarkFailed records a failed payment attempt
func (p *Payment) MarkFailed() error {
	if !p.Status.CanTransitionTo(PaymentStatusFailed) {
		return shared.NewDomainError("INVALID_STATE", "Payment cannot fail from status "+p.Status.String())
	}
	p.Status = PaymentStatusFailed
	p.UpdatedAt = time.Now()
	return nil
}

// RecordRefund records a refund confirmed by the gateway. A refund covering
// the entire charged amount moves the payment to REFUNDED; anything less
// leaves it PARTIALLY_REFUNDED. A zero amount closes the payment as
// REFUNDED without touching the charged total (the no-refund tier).
func (p *Payment) RecordRefund(amount decimal.Decimal) error {
	if p.Status != PaymentStatusCompleted && p.Status != PaymentStatusPartiallyRefunded {
		return shared.ErrPaymentNotCompleted
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount cannot be negative")
	}
	total := p.RefundedAmount.Add(amount)
	if total.GreaterThan(p.ChargeAmount) {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund exceeds the charged amount")
	}
	now := time.Now()
	p.RefundedAmount = total
	if total.Equal(p.ChargeAmount) || amount.IsZero() {
		p.Status = PaymentStatusRefunded
	} else {
		p.Status = PaymentStatusPartiallyRefunded
	}
	p.RefundedAt = &now
	p.UpdatedAt = now
	return nil
}
