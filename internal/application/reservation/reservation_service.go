package reservation

import (
	"context"
	"time"

	appbilling "github.com/farmeet/backend/internal/application/billing"
	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/catalog"
	"github.com/farmeet/backend/internal/domain/reservation"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scope filters for listing a user's reservations
const (
	ScopeActive  = "active"
	ScopeHistory = "history"
)

// ReservationService coordinates the reservation lifecycle: capacity
// reservation at creation, refund-then-release on cancellation, and the
// owner/farm-owner query surface.
type ReservationService struct {
	scope           appbilling.TransactionScope
	reservationRepo reservation.ReservationRepository
	eventRepo       catalog.EventRepository
	paymentRepo     billing.PaymentRepository
	payments        *appbilling.PaymentService
	notifier        shared.Notifier
	publisher       shared.EventPublisher
	logger          *zap.Logger
}

// ReservationServiceConfig holds the dependencies for a ReservationService
type ReservationServiceConfig struct {
	Scope           appbilling.TransactionScope
	ReservationRepo reservation.ReservationRepository
	EventRepo       catalog.EventRepository
	PaymentRepo     billing.PaymentRepository
	Payments        *appbilling.PaymentService
	Notifier        shared.Notifier
	Publisher       shared.EventPublisher
	Logger          *zap.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(config ReservationServiceConfig) *ReservationService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		scope:           config.Scope,
		reservationRepo: config.ReservationRepo,
		eventRepo:       config.EventRepo,
		paymentRepo:     config.PaymentRepo,
		payments:        config.Payments,
		notifier:        config.Notifier,
		publisher:       config.Publisher,
		logger:          logger,
	}
}

// publishEvents hands the aggregate's pending events to the publisher and
// clears them. Publishing happens after the transaction committed; a lost
// event is acceptable, a published event for a rolled-back change is not.
func (s *ReservationService) publishEvents(ctx context.Context, r *reservation.Reservation) {
	if s.publisher == nil {
		return
	}
	for _, event := range r.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("domain event publish failed",
				zap.String("event_type", event.EventType()), zap.Error(err))
		}
	}
	r.ClearDomainEvents()
}

// Create reserves seats at an event and persists the reservation in
// PENDING_PAYMENT. The capacity decrement and the reservation insert share a
// transaction, so no reader ever sees a reservation without its seats held.
func (s *ReservationService) Create(ctx context.Context, userID uuid.UUID, req CreateReservationRequest) (*ReservationResponse, error) {
	event, err := s.eventRepo.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event.HasStartedBy(time.Now()) {
		return nil, shared.NewDomainError("EVENT_STARTED", "Event has already started")
	}

	r, err := reservation.NewReservation(userID, event, req.Adults, req.Children, req.Infants)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		if err := repos.Events().ReserveCapacity(ctx, event.ID, r.TotalPeople()); err != nil {
			return err
		}
		return repos.Reservations().Save(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation created",
		zap.String("reservation_id", r.ID.String()),
		zap.String("event_id", event.ID.String()),
		zap.Int("people", r.TotalPeople()))
	s.publishEvents(ctx, r)

	resp := ToReservationResponse(r)
	return &resp, nil
}

// Cancel cancels a reservation on behalf of its owner. A completed payment
// is refunded first; a refund failure aborts the cancellation so capacity is
// never released against an unrefunded charge. The status-guarded transition
// keeps a concurrent sweep from releasing the same seats twice.
func (s *ReservationService) Cancel(ctx context.Context, userID, reservationID uuid.UUID) error {
	r, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if !r.IsOwner(userID) {
		return shared.ErrUnauthorized
	}
	if r.Status == reservation.StatusCancelled {
		return shared.ErrAlreadyCancelled
	}
	if !r.Status.CanTransitionTo(reservation.StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Reservation cannot be cancelled from status "+r.Status.String())
	}

	payment, err := s.paymentRepo.FindByReservation(ctx, reservationID)
	if err != nil && err != shared.ErrNotFound {
		return err
	}
	if payment != nil {
		switch payment.Status {
		case billing.PaymentStatusCompleted:
			if _, err := s.payments.Refund(ctx, reservationID); err != nil {
				return err
			}
		case billing.PaymentStatusPending:
			if err := s.payments.CancelPending(ctx, reservationID); err != nil {
				return err
			}
		}
	}

	err = s.scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		cancelled, err := repos.Reservations().UpdateStatusIf(ctx, r.ID,
			reservation.ActiveStatuses(), reservation.StatusCancelled)
		if err != nil {
			return err
		}
		if !cancelled {
			return shared.ErrAlreadyCancelled
		}
		return repos.Events().ReleaseCapacity(ctx, r.EventID, r.TotalPeople())
	})
	if err != nil {
		return err
	}

	s.logger.Info("reservation cancelled",
		zap.String("reservation_id", r.ID.String()),
		zap.String("by_user", userID.String()))

	if s.publisher != nil {
		event := reservation.NewReservationCancelledEvent(r)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("domain event publish failed",
				zap.String("event_type", event.EventType()), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, r.UserID, shared.TemplateReservationCancelled, map[string]string{
			"reservation_id": r.ID.String(),
		})
	}
	return nil
}

// Get returns a reservation, visible to its owner and the event owner
func (s *ReservationService) Get(ctx context.Context, userID, reservationID uuid.UUID) (*ReservationResponse, error) {
	r, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !r.IsOwner(userID) {
		event, err := s.eventRepo.FindByID(ctx, r.EventID)
		if err != nil {
			return nil, err
		}
		if event.OwnerUserID != userID {
			return nil, shared.ErrUnauthorized
		}
	}
	resp := ToReservationResponse(r)
	return &resp, nil
}

// ListMine returns the calling user's reservations, split into active
// (still holding seats) and history.
func (s *ReservationService) ListMine(ctx context.Context, userID uuid.UUID, listScope string, filter shared.Filter) ([]ReservationResponse, error) {
	var statuses []reservation.ReservationStatus
	switch listScope {
	case ScopeActive:
		statuses = reservation.ActiveStatuses()
	case ScopeHistory:
		statuses = reservation.HistoryStatuses()
	case "":
		// All statuses
	default:
		return nil, shared.NewDomainError("INVALID_SCOPE", "Scope must be active or history")
	}

	reservations, err := s.reservationRepo.FindByUser(ctx, userID, statuses, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ReservationResponse, len(reservations))
	for i := range reservations {
		responses[i] = ToReservationResponse(&reservations[i])
	}
	return responses, nil
}

// ListForEvent returns an event's reservations to the event owner
func (s *ReservationService) ListForEvent(ctx context.Context, userID, eventID uuid.UUID, filter shared.Filter) ([]ReservationResponse, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OwnerUserID != userID {
		return nil, shared.ErrUnauthorized
	}

	reservations, err := s.reservationRepo.FindByEvent(ctx, eventID, nil, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ReservationResponse, len(reservations))
	for i := range reservations {
		responses[i] = ToReservationResponse(&reservations[i])
	}
	return responses, nil
}

// RefundPreview reports what cancelling right now would refund, so clients
// can warn the user before a 50% or 0% tier cancellation.
func (s *ReservationService) RefundPreview(ctx context.Context, userID, reservationID uuid.UUID) (*RefundPreviewResponse, error) {
	r, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !r.IsOwner(userID) {
		return nil, shared.ErrUnauthorized
	}

	preview := &RefundPreviewResponse{
		Percentage: reservation.RefundPercentage(time.Now(), r.EventStart),
	}

	payment, err := s.paymentRepo.FindByReservation(ctx, reservationID)
	if err != nil {
		if err == shared.ErrNotFound {
			// Nothing charged yet, nothing to refund
			return preview, nil
		}
		return nil, err
	}
	preview.ChargedAmount = payment.ChargeAmount
	if payment.Status == billing.PaymentStatusCompleted {
		preview.RefundableAmount = reservation.RefundAmount(payment.ChargeAmountMoney(), preview.Percentage).Amount()
	}
	return preview, nil
}
