package reservation

import (
	"time"

	"github.com/farmeet/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Refund tiers based on how far in advance the cancellation happens.
// Four or more days out refunds the full charged amount, one to three
// days out refunds half, less than one day refunds nothing.
const (
	RefundFull    = 100
	RefundPartial = 50
	RefundNone    = 0
)

// RefundPercentage returns the refund tier for cancelling at instant now
// a reservation whose event starts at eventStart. Boundaries are inclusive
// on the generous side: exactly 4 days out is 100, exactly 1 day out is 50.
func RefundPercentage(now, eventStart time.Time) int {
	if !eventStart.Before(now.Add(96 * time.Hour)) {
		return RefundFull
	}
	if !eventStart.Before(now.Add(24 * time.Hour)) {
		return RefundPartial
	}
	return RefundNone
}

// RefundAmount computes the refundable portion of the charged amount,
// truncated down to whole yen. Voucher-applied amounts are excluded by the
// caller; only the charged (gateway) portion is ever refunded here.
func RefundAmount(charged valueobject.Money, percentage int) valueobject.Money {
	if percentage <= 0 {
		return valueobject.Zero(charged.Currency())
	}
	pct := decimal.NewFromInt(int64(percentage)).Div(decimal.NewFromInt(100))
	return charged.Multiply(pct).Truncate(0)
}
