package reservation

import (
	"context"
	"time"

	appbilling "github.com/farmeet/backend/internal/application/billing"
	"github.com/farmeet/backend/internal/domain/reservation"
	"github.com/farmeet/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SweepService reconciles reservations the request path cannot: it completes
// confirmed reservations whose event has started and expires unpaid ones
// that aged out of their payment window. Both sweeps rely on status-guarded
// updates, so a sweep racing a user action or another instance applies each
// transition at most once.
type SweepService struct {
	scope           appbilling.TransactionScope
	reservationRepo reservation.ReservationRepository
	payments        *appbilling.PaymentService
	notifier        shared.Notifier
	publisher       shared.EventPublisher
	logger          *zap.Logger
	batchSize       int
	pendingTTL      time.Duration
	startCutoff     time.Duration
	now             func() time.Time
}

// SweepServiceConfig holds the dependencies for a SweepService
type SweepServiceConfig struct {
	Scope           appbilling.TransactionScope
	ReservationRepo reservation.ReservationRepository
	Payments        *appbilling.PaymentService
	Notifier        shared.Notifier
	Publisher       shared.EventPublisher
	Logger          *zap.Logger

	// BatchSize caps the rows taken per sweep pass
	BatchSize int
	// PendingTTL is how long an unpaid reservation may wait for payment
	PendingTTL time.Duration
	// StartCutoff expires unpaid reservations this close to the event start
	StartCutoff time.Duration
	// Now overrides the clock, for tests
	Now func() time.Time
}

// DefaultSweepBatchSize caps sweep batches when no size is configured
const DefaultSweepBatchSize = 200

// NewSweepService creates a new SweepService
func NewSweepService(config SweepServiceConfig) *SweepService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}
	pendingTTL := config.PendingTTL
	if pendingTTL <= 0 {
		pendingTTL = 48 * time.Hour
	}
	startCutoff := config.StartCutoff
	if startCutoff <= 0 {
		startCutoff = 3 * time.Hour
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &SweepService{
		scope:           config.Scope,
		reservationRepo: config.ReservationRepo,
		payments:        config.Payments,
		notifier:        config.Notifier,
		publisher:       config.Publisher,
		logger:          logger,
		batchSize:       batchSize,
		pendingTTL:      pendingTTL,
		startCutoff:     startCutoff,
		now:             now,
	}
}

// CompleteStarted moves CONFIRMED reservations whose event has started to
// COMPLETED. Returns the number of reservations completed in this pass.
func (s *SweepService) CompleteStarted(ctx context.Context) (int, error) {
	now := s.now()
	batch, err := s.reservationRepo.FindConfirmedStartedBefore(ctx, now, s.batchSize)
	if err != nil {
		return 0, err
	}

	completed := 0
	for i := range batch {
		r := &batch[i]
		moved, err := s.reservationRepo.UpdateStatusIf(ctx, r.ID,
			[]reservation.ReservationStatus{reservation.StatusConfirmed},
			reservation.StatusCompleted)
		if err != nil {
			s.logger.Warn("completion sweep skipped a reservation",
				zap.String("reservation_id", r.ID.String()),
				zap.Error(err))
			continue
		}
		if moved {
			completed++
		}
	}
	if completed > 0 {
		s.logger.Info("completion sweep finished",
			zap.Int("completed", completed),
			zap.Int("batch", len(batch)))
	}
	return completed, nil
}

// ExpireUnpaid cancels reservations still waiting for payment past the
// pending TTL or too close to their event start. The held seats go back to
// the event and any pending payment is voided; each affected user gets an
// auto-expiry notification. Returns the number of reservations expired.
func (s *SweepService) ExpireUnpaid(ctx context.Context) (int, error) {
	now := s.now()
	createdBefore := now.Add(-s.pendingTTL)
	startingBefore := now.Add(s.startCutoff)

	batch, err := s.reservationRepo.FindPendingExpired(ctx, createdBefore, startingBefore, s.batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range batch {
		r := &batch[i]
		cancelled, err := s.expireOne(ctx, r)
		if err != nil {
			s.logger.Warn("expiry sweep skipped a reservation",
				zap.String("reservation_id", r.ID.String()),
				zap.Error(err))
			continue
		}
		if !cancelled {
			continue
		}
		expired++

		if s.publisher != nil {
			event := reservation.NewReservationCancelledEvent(r)
			if err := s.publisher.Publish(ctx, event); err != nil {
				s.logger.Warn("domain event publish failed",
					zap.String("event_type", event.EventType()), zap.Error(err))
			}
		}
		if s.notifier != nil {
			s.notifier.Notify(ctx, r.UserID, shared.TemplateReservationAutoExpired, map[string]string{
				"reservation_id": r.ID.String(),
			})
		}
	}
	if expired > 0 {
		s.logger.Info("expiry sweep finished",
			zap.Int("expired", expired),
			zap.Int("batch", len(batch)))
	}
	return expired, nil
}

// expireOne cancels a single reservation and releases its seats atomically.
// The status guard makes a concurrent payment confirmation or user cancel
// win cleanly; the sweep then leaves the reservation alone.
func (s *SweepService) expireOne(ctx context.Context, r *reservation.Reservation) (bool, error) {
	cancelled := false
	err := s.scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		moved, err := repos.Reservations().UpdateStatusIf(ctx, r.ID,
			reservation.PendingStatuses(), reservation.StatusCancelled)
		if err != nil {
			return err
		}
		if !moved {
			return nil
		}
		cancelled = true
		return repos.Events().ReleaseCapacity(ctx, r.EventID, r.TotalPeople())
	})
	if err != nil || !cancelled {
		return false, err
	}

	if s.payments != nil {
		if err := s.payments.CancelPending(ctx, r.ID); err != nil {
			// A stale PENDING payment cannot confirm anyway: the
			// reservation has already left the pending statuses.
			s.logger.Warn("failed to void pending payment",
				zap.String("reservation_id", r.ID.String()),
				zap.Error(err))
		}
	}
	return true, nil
}
