package billing

import (
	"context"

	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByReservation finds the payment backing a reservation
	FindByReservation(ctx context.Context, reservationID uuid.UUID) (*Payment, error)

	// FindBySessionID finds a payment by its gateway checkout session
	FindBySessionID(ctx context.Context, sessionID string) (*Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, p *Payment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, p *Payment) error

	// UpdateStatusIf transitions the payment to the target status only if its
	// current status is in the from set. Returns true when this call performed
	// the transition; a replayed confirmation sees false and stops.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []PaymentStatus, to PaymentStatus) (bool, error)
}

// VoucherRepository defines the interface for gift voucher persistence
type VoucherRepository interface {
	// FindByID finds a voucher by ID
	FindByID(ctx context.Context, id uuid.UUID) (*GiftVoucher, error)

	// FindByCode finds a voucher by its code
	FindByCode(ctx context.Context, code string) (*GiftVoucher, error)

	// FindByOwner lists a user's vouchers
	FindByOwner(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]GiftVoucher, error)

	// Save creates or updates a voucher
	Save(ctx context.Context, v *GiftVoucher) error

	// ConsumeBalance atomically decrements the voucher balance, flipping the
	// status to USED when it reaches zero. Fails with ErrVoucherNotUsable when
	// the balance is lower than the amount or the voucher is not REDEEMED.
	ConsumeBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// BindOwner atomically binds an unowned voucher to a user. Returns false
	// when another user already redeemed it.
	BindOwner(ctx context.Context, id, userID uuid.UUID) (bool, error)
}
