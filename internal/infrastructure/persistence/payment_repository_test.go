package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentRepository creates a GormPaymentRepository with a mocked SQL connection
func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func paymentRows(id, reservationID uuid.UUID, status billing.PaymentStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "version", "reservation_id", "channel", "status",
		"charge_amount", "voucher_amount", "refunded_amount", "external_session_id",
	}).AddRow(
		id, 1, reservationID, billing.ChannelCard, status,
		decimal.NewFromInt(15000), decimal.Zero, decimal.Zero, "cs_test_123",
	)
}

func TestGormPaymentRepository_FindByReservation(t *testing.T) {
	t.Run("finds the payment backing a reservation", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		reservationID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE reservation_id = \$1 ORDER BY created_at DESC`).
			WithArgs(reservationID, 1).
			WillReturnRows(paymentRows(paymentID, reservationID, billing.PaymentStatusPending))

		payment, err := repo.FindByReservation(context.Background(), reservationID)

		assert.NoError(t, err)
		assert.Equal(t, paymentID, payment.ID)
		assert.Equal(t, billing.ChannelCard, payment.Channel)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for an unpaid reservation", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE reservation_id = \$1`).
			WillReturnError(gorm.ErrRecordNotFound)

		payment, err := repo.FindByReservation(context.Background(), uuid.New())

		assert.Nil(t, payment)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_FindBySessionID(t *testing.T) {
	t.Run("finds a payment by checkout session", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE external_session_id = \$1`).
			WithArgs("cs_test_123", 1).
			WillReturnRows(paymentRows(paymentID, uuid.New(), billing.PaymentStatusPending))

		payment, err := repo.FindBySessionID(context.Background(), "cs_test_123")

		assert.NoError(t, err)
		assert.Equal(t, paymentID, payment.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_SaveWithLock(t *testing.T) {
	t.Run("returns error when version does not match", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		stale := &billing.Payment{}
		stale.ID = uuid.New()
		stale.Version = 2
		stale.ReservationID = uuid.New()
		stale.Channel = billing.ChannelCard
		stale.Status = billing.PaymentStatusCompleted
		stale.ChargeAmount = decimal.NewFromInt(15000)

		mock.ExpectExec(`UPDATE "payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), stale)

		assert.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_UpdateStatusIf(t *testing.T) {
	t.Run("returns true when the transition is applied", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.UpdateStatusIf(context.Background(), uuid.New(),
			[]billing.PaymentStatus{billing.PaymentStatusPending}, billing.PaymentStatusCompleted)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false for a replayed confirmation", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.UpdateStatusIf(context.Background(), uuid.New(),
			[]billing.PaymentStatus{billing.PaymentStatusPending}, billing.PaymentStatusCompleted)

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
