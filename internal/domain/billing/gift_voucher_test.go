package billing

import (
	"testing"
	"time"

	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRedeemedVoucher(t *testing.T, owner uuid.UUID, balance int64) *GiftVoucher {
	v, err := NewGiftVoucher(NewVoucherCode(), decimal.NewFromInt(balance), time.Now().Add(365*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, v.Activate())
	require.NoError(t, v.Redeem(owner, time.Now()))
	return v
}

func TestNewVoucherCode(t *testing.T) {
	code := NewVoucherCode()
	assert.Len(t, code, 16)
	for _, c := range code {
		assert.Contains(t, voucherCodeAlphabet, string(c))
	}
	assert.NotEqual(t, code, NewVoucherCode())
}

func TestGiftVoucher_Redeem(t *testing.T) {
	now := time.Now()
	userID := uuid.New()

	t.Run("binds an active voucher once", func(t *testing.T) {
		v, err := NewGiftVoucher(NewVoucherCode(), decimal.NewFromInt(5000), now.Add(24*time.Hour))
		require.NoError(t, err)
		require.NoError(t, v.Activate())

		require.NoError(t, v.Redeem(userID, now))
		assert.Equal(t, VoucherStatusRedeemed, v.Status)
		assert.Equal(t, userID, *v.OwnerUserID)

		err = v.Redeem(uuid.New(), now)
		assert.ErrorIs(t, err, shared.ErrVoucherAlreadyRedeemed)
	})

	t.Run("pending voucher is not activated", func(t *testing.T) {
		v, err := NewGiftVoucher(NewVoucherCode(), decimal.NewFromInt(5000), now.Add(24*time.Hour))
		require.NoError(t, err)
		err = v.Redeem(userID, now)
		assert.ErrorIs(t, err, shared.ErrVoucherNotActivated)
	})

	t.Run("expired voucher", func(t *testing.T) {
		v, err := NewGiftVoucher(NewVoucherCode(), decimal.NewFromInt(5000), now.Add(time.Hour))
		require.NoError(t, err)
		require.NoError(t, v.Activate())
		err = v.Redeem(userID, now.Add(2*time.Hour))
		assert.ErrorIs(t, err, shared.ErrVoucherExpired)
	})
}

func TestGiftVoucher_Apply(t *testing.T) {
	now := time.Now()
	owner := uuid.New()

	t.Run("caps at the remaining balance", func(t *testing.T) {
		v := createRedeemedVoucher(t, owner, 1500)
		applied, err := v.Apply(owner, decimal.NewFromInt(2000), now)
		require.NoError(t, err)
		assert.True(t, applied.Equal(decimal.NewFromInt(1500)))
		// Apply is a dry run
		assert.True(t, v.Balance.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, VoucherStatusRedeemed, v.Status)
	})

	t.Run("returns the requested amount when balance suffices", func(t *testing.T) {
		v := createRedeemedVoucher(t, owner, 5000)
		applied, err := v.Apply(owner, decimal.NewFromInt(2000), now)
		require.NoError(t, err)
		assert.True(t, applied.Equal(decimal.NewFromInt(2000)))
	})

	t.Run("rejects other users", func(t *testing.T) {
		v := createRedeemedVoucher(t, owner, 5000)
		_, err := v.Apply(uuid.New(), decimal.NewFromInt(1000), now)
		assert.ErrorIs(t, err, shared.ErrVoucherNotOwner)
	})

	t.Run("rejects an exhausted voucher", func(t *testing.T) {
		v := createRedeemedVoucher(t, owner, 1000)
		require.NoError(t, v.Consume(decimal.NewFromInt(1000)))
		_, err := v.Apply(owner, decimal.NewFromInt(500), now)
		assert.ErrorIs(t, err, shared.ErrVoucherNotUsable)
	})

	t.Run("rejects an expired voucher", func(t *testing.T) {
		v := createRedeemedVoucher(t, owner, 1000)
		_, err := v.Apply(owner, decimal.NewFromInt(500), v.ExpiresAt.Add(time.Minute))
		assert.ErrorIs(t, err, shared.ErrVoucherExpired)
	})
}

func TestGiftVoucher_Consume(t *testing.T) {
	owner := uuid.New()

	t.Run("exhausting the balance marks the voucher used", func(t *testing.T) {
		v := createRedeemedVoucher(t, owner, 1500)
		require.NoError(t, v.Consume(decimal.NewFromInt(1500)))
		assert.True(t, v.Balance.IsZero())
		assert.Equal(t, VoucherStatusUsed, v.Status)
	})

	t.Run("partial consumption keeps the voucher redeemed", func(t *testing.T) {
		v := createRedeemedVoucher(t, owner, 1500)
		require.NoError(t, v.Consume(decimal.NewFromInt(500)))
		assert.True(t, v.Balance.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, VoucherStatusRedeemed, v.Status)
	})

	t.Run("cannot consume past the balance", func(t *testing.T) {
		v := createRedeemedVoucher(t, owner, 1000)
		err := v.Consume(decimal.NewFromInt(1001))
		assert.ErrorIs(t, err, shared.ErrVoucherNotUsable)
	})

	t.Run("used voucher cannot consume again", func(t *testing.T) {
		v := createRedeemedVoucher(t, owner, 1000)
		require.NoError(t, v.Consume(decimal.NewFromInt(1000)))
		err := v.Consume(decimal.NewFromInt(1))
		assert.ErrorIs(t, err, shared.ErrVoucherNotUsable)
	})
}
