package billing

import (
	"time"

	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Payment DTOs ====================

// InitiatePaymentRequest represents a request to pay for a reservation
type InitiatePaymentRequest struct {
	Channel   billing.PaymentChannel `json:"channel" binding:"required,oneof=CARD PAYPAY BANK_TRANSFER"`
	VoucherID *uuid.UUID             `json:"voucher_id"`
	// VoucherAmount caps how much of the voucher balance to apply; zero or
	// absent applies as much as the balance covers.
	VoucherAmount *decimal.Decimal `json:"voucher_amount"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID               uuid.UUID              `json:"id"`
	ReservationID    uuid.UUID              `json:"reservation_id"`
	Channel          billing.PaymentChannel `json:"channel"`
	Status           billing.PaymentStatus  `json:"status"`
	ChargeAmount     decimal.Decimal        `json:"charge_amount"`
	VoucherAmount    decimal.Decimal        `json:"voucher_amount"`
	RefundedAmount   decimal.Decimal        `json:"refunded_amount"`
	RedirectURL      string                 `json:"redirect_url,omitempty"`
	TransferDeadline *time.Time             `json:"transfer_deadline,omitempty"`
	PaidAt           *time.Time             `json:"paid_at,omitempty"`
	RefundedAt       *time.Time             `json:"refunded_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// ToPaymentResponse converts a domain payment to its API representation
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		ReservationID:    p.ReservationID,
		Channel:          p.Channel,
		Status:           p.Status,
		ChargeAmount:     p.ChargeAmount,
		VoucherAmount:    p.VoucherAmount,
		RefundedAmount:   p.RefundedAmount,
		TransferDeadline: p.TransferDeadline,
		PaidAt:           p.PaidAt,
		RefundedAt:       p.RefundedAt,
		CreatedAt:        p.CreatedAt,
	}
}

// ==================== Voucher DTOs ====================

// RedeemVoucherRequest represents a request to bind a voucher code to the caller
type RedeemVoucherRequest struct {
	Code string `json:"code" binding:"required,min=8,max=32"`
}

// VoucherResponse represents a gift voucher in API responses
type VoucherResponse struct {
	ID         uuid.UUID             `json:"id"`
	Code       string                `json:"code"`
	FaceAmount decimal.Decimal       `json:"face_amount"`
	Balance    decimal.Decimal       `json:"balance"`
	Status     billing.VoucherStatus `json:"status"`
	ExpiresAt  time.Time             `json:"expires_at"`
	Usable     bool                  `json:"usable"`
}

// ToVoucherResponse converts a domain voucher to its API representation
func ToVoucherResponse(v *billing.GiftVoucher, now time.Time) VoucherResponse {
	return VoucherResponse{
		ID:         v.ID,
		Code:       v.Code,
		FaceAmount: v.FaceAmount,
		Balance:    v.Balance,
		Status:     v.Status,
		ExpiresAt:  v.ExpiresAt,
		Usable:     v.IsUsableAt(now),
	}
}
