package billing

import (
	"context"

	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/catalog"
	"github.com/farmeet/backend/internal/domain/reservation"
)

// TransactionScope provides transactional access to the reservation
// lifecycle repositories. Operations executed within a scope commit or
// roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the lifecycle repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// Events returns the event repository scoped to the current transaction
	Events() catalog.EventRepository
	// Reservations returns the reservation repository scoped to the current transaction
	Reservations() reservation.ReservationRepository
	// Participants returns the participant repository scoped to the current transaction
	Participants() reservation.ParticipantRepository
	// Payments returns the payment repository scoped to the current transaction
	Payments() billing.PaymentRepository
	// Vouchers returns the voucher repository scoped to the current transaction
	Vouchers() billing.VoucherRepository
}
