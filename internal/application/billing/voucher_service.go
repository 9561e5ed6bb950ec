package billing

import (
	"context"
	"time"

	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherService handles gift voucher operations: redemption, lookup, and
// the dry-run balance application used during checkout.
type VoucherService struct {
	voucherRepo billing.VoucherRepository
	publisher   shared.EventPublisher
}

// NewVoucherService creates a new VoucherService. The publisher may be nil,
// in which case redemption events are dropped.
func NewVoucherService(voucherRepo billing.VoucherRepository, publisher shared.EventPublisher) *VoucherService {
	return &VoucherService{voucherRepo: voucherRepo, publisher: publisher}
}

// Check looks up a voucher by code and reports its public state
func (s *VoucherService) Check(ctx context.Context, code string) (*VoucherResponse, error) {
	voucher, err := s.voucherRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := ToVoucherResponse(voucher, time.Now())
	return &resp, nil
}

// Redeem binds an activated, unowned voucher to the calling user. The
// domain check validates state; the conditional BindOwner update makes the
// binding first-writer-wins under concurrent redemption of the same code.
func (s *VoucherService) Redeem(ctx context.Context, userID uuid.UUID, code string) (*VoucherResponse, error) {
	voucher, err := s.voucherRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := voucher.Redeem(userID, now); err != nil {
		return nil, err
	}

	bound, err := s.voucherRepo.BindOwner(ctx, voucher.ID, userID)
	if err != nil {
		return nil, err
	}
	if !bound {
		return nil, shared.ErrVoucherAlreadyRedeemed
	}

	if s.publisher != nil {
		// Binding is already durable; a dropped event is not worth failing
		// the redemption over.
		_ = s.publisher.Publish(ctx, billing.NewVoucherRedeemedEvent(voucher, userID))
	}

	resp := ToVoucherResponse(voucher, now)
	return &resp, nil
}

// List returns the calling user's vouchers, optionally restricted to the
// ones currently spendable.
func (s *VoucherService) List(ctx context.Context, userID uuid.UUID, usableOnly bool, filter shared.Filter) ([]VoucherResponse, error) {
	vouchers, err := s.voucherRepo.FindByOwner(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]VoucherResponse, 0, len(vouchers))
	for i := range vouchers {
		if usableOnly && !vouchers[i].IsUsableAt(now) {
			continue
		}
		responses = append(responses, ToVoucherResponse(&vouchers[i], now))
	}
	return responses, nil
}

// Apply computes how much of the requested amount the voucher covers for
// the user. Dry run only; consumption happens at payment confirmation.
func (s *VoucherService) Apply(ctx context.Context, voucherID, userID uuid.UUID, requested decimal.Decimal) (decimal.Decimal, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, voucherID)
	if err != nil {
		return decimal.Zero, err
	}
	return voucher.Apply(userID, requested, time.Now())
}
