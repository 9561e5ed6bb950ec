package billing

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherStatus represents the lifecycle status of a gift voucher
type VoucherStatus string

const (
	VoucherStatusPending   VoucherStatus = "PENDING"  // Issued, not yet activated
	VoucherStatusActive    VoucherStatus = "ACTIVE"   // Activated, not yet bound to a user
	VoucherStatusRedeemed  VoucherStatus = "REDEEMED" // Bound to a user, spendable
	VoucherStatusUsed      VoucherStatus = "USED"     // Balance exhausted
	VoucherStatusExpired   VoucherStatus = "EXPIRED"
	VoucherStatusCancelled VoucherStatus = "CANCELLED"
)

// IsValid checks if the status is a valid VoucherStatus
func (s VoucherStatus) IsValid() bool {
	switch s {
	case VoucherStatusPending, VoucherStatusActive, VoucherStatusRedeemed,
		VoucherStatusUsed, VoucherStatusExpired, VoucherStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of VoucherStatus
func (s VoucherStatus) String() string {
	return string(s)
}

// voucherCodeAlphabet excludes ambiguous characters (0/O, 1/I/L)
const voucherCodeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// voucherCodeLength is the length of generated voucher codes
const voucherCodeLength = 16

// NewVoucherCode generates a random voucher code from an unambiguous alphabet
func NewVoucherCode() string {
	buf := make([]byte, voucherCodeLength)
	max := big.NewInt(int64(len(voucherCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		buf[i] = voucherCodeAlphabet[n.Int64()]
	}
	return string(buf)
}

// GiftVoucher is a balance-bearing voucher. Issuance and activation happen
// upstream in the purchase flow; this ledger owns redemption, balance
// application, and consumption.
type GiftVoucher struct {
	shared.BaseAggregateRoot
	Code        string
	FaceAmount  decimal.Decimal
	Balance     decimal.Decimal
	Status      VoucherStatus
	OwnerUserID *uuid.UUID
	ExpiresAt   time.Time
	ActivatedAt *time.Time
	RedeemedAt  *time.Time
}

// NewGiftVoucher creates a pending voucher with its full face amount as
// balance. Used by seeding and tests; issuance lives upstream.
func NewGiftVoucher(code string, faceAmount decimal.Decimal, expiresAt time.Time) (*GiftVoucher, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Voucher code cannot be empty")
	}
	if !faceAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Voucher face amount must be positive")
	}
	return &GiftVoucher{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		FaceAmount:        faceAmount,
		Balance:           faceAmount,
		Status:            VoucherStatusPending,
		ExpiresAt:         expiresAt,
	}, nil
}

// Activate makes a pending voucher redeemable
func (v *GiftVoucher) Activate() error {
	if v.Status != VoucherStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Voucher cannot be activated from status "+v.Status.String())
	}
	now := time.Now()
	v.Status = VoucherStatusActive
	v.ActivatedAt = &now
	v.UpdatedAt = now
	return nil
}

// IsExpiredAt reports whether the voucher is past its expiry at the instant
func (v *GiftVoucher) IsExpiredAt(now time.Time) bool {
	return !v.ExpiresAt.After(now)
}

// IsUsableAt reports whether the voucher can be applied to a payment at the
// instant: redeemed to a user, positive balance, not expired.
func (v *GiftVoucher) IsUsableAt(now time.Time) bool {
	return v.Status == VoucherStatusRedeemed && v.Balance.IsPositive() && !v.IsExpiredAt(now)
}

// Redeem binds an activated, unowned voucher to a user exactly once
func (v *GiftVoucher) Redeem(userID uuid.UUID, now time.Time) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if v.OwnerUserID != nil || v.Status == VoucherStatusRedeemed || v.Status == VoucherStatusUsed {
		return shared.ErrVoucherAlreadyRedeemed
	}
	if v.IsExpiredAt(now) || v.Status == VoucherStatusExpired {
		return shared.ErrVoucherExpired
	}
	if v.Status != VoucherStatusActive {
		return shared.ErrVoucherNotActivated
	}
	v.OwnerUserID = &userID
	v.Status = VoucherStatusRedeemed
	v.RedeemedAt = &now
	v.UpdatedAt = now
	return nil
}

// Apply computes how much of the requested amount this voucher can cover for
// the given user. It is a dry run and never mutates the balance; the
// applied amount is consumed later, on payment confirmation.
func (v *GiftVoucher) Apply(userID uuid.UUID, requested decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if v.OwnerUserID == nil || *v.OwnerUserID != userID {
		return decimal.Zero, shared.ErrVoucherNotOwner
	}
	if !v.IsUsableAt(now) {
		if v.IsExpiredAt(now) {
			return decimal.Zero, shared.ErrVoucherExpired
		}
		return decimal.Zero, shared.ErrVoucherNotUsable
	}
	if !requested.IsPositive() {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Requested amount must be positive")
	}
	if v.Balance.LessThan(requested) {
		return v.Balance, nil
	}
	return requested, nil
}

// Consume decrements the balance, marking the voucher USED when it reaches
// zero. Callers guard replay with the payment id so a retried confirmation
// never consumes twice.
func (v *GiftVoucher) Consume(amount decimal.Decimal) error {
	if v.Status != VoucherStatusRedeemed {
		return shared.ErrVoucherNotUsable
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Consume amount must be positive")
	}
	if v.Balance.LessThan(amount) {
		return shared.ErrVoucherNotUsable
	}
	v.Balance = v.Balance.Sub(amount)
	if v.Balance.IsZero() {
		v.Status = VoucherStatusUsed
	}
	v.UpdatedAt = time.Now()
	return nil
}
