package billing

import (
	"context"
	"time"

	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/catalog"
	"github.com/farmeet/backend/internal/domain/reservation"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultGatewayTimeout bounds a single gateway round trip
const DefaultGatewayTimeout = 10 * time.Second

// PaymentService drives payment creation, confirmation, and refund across
// channels, delegating charges to the registered gateways.
type PaymentService struct {
	scope           TransactionScope
	reservationRepo reservation.ReservationRepository
	eventRepo       catalog.EventRepository
	paymentRepo     billing.PaymentRepository
	voucherRepo     billing.VoucherRepository
	gateways        map[billing.PaymentChannel]billing.PaymentGateway
	notifier        shared.Notifier
	publisher       shared.EventPublisher
	logger          *zap.Logger
	gatewayTimeout  time.Duration
}

// PaymentServiceConfig holds the dependencies for a PaymentService
type PaymentServiceConfig struct {
	Scope           TransactionScope
	ReservationRepo reservation.ReservationRepository
	EventRepo       catalog.EventRepository
	PaymentRepo     billing.PaymentRepository
	VoucherRepo     billing.VoucherRepository
	Notifier        shared.Notifier
	Publisher       shared.EventPublisher
	Logger          *zap.Logger
	GatewayTimeout  time.Duration
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(config PaymentServiceConfig) *PaymentService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := config.GatewayTimeout
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}
	return &PaymentService{
		scope:           config.Scope,
		reservationRepo: config.ReservationRepo,
		eventRepo:       config.EventRepo,
		paymentRepo:     config.PaymentRepo,
		voucherRepo:     config.VoucherRepo,
		gateways:        make(map[billing.PaymentChannel]billing.PaymentGateway),
		notifier:        config.Notifier,
		publisher:       config.Publisher,
		logger:          logger,
		gatewayTimeout:  timeout,
	}
}

// RegisterGateway registers the gateway serving a payment channel
func (s *PaymentService) RegisterGateway(channel billing.PaymentChannel, gateway billing.PaymentGateway) {
	s.gateways[channel] = gateway
}

func (s *PaymentService) gateway(channel billing.PaymentChannel) (billing.PaymentGateway, error) {
	gw, ok := s.gateways[channel]
	if !ok {
		return nil, shared.ErrChannelUnavailable
	}
	return gw, nil
}

// publish hands a domain event to the publisher after the backing transaction
// committed. Publish failures are logged and swallowed; the state change is
// already durable.
func (s *PaymentService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("domain event publish failed",
			zap.String("event_type", event.EventType()), zap.Error(err))
	}
}

// Initiate creates the payment for a reservation. The voucher portion is a
// dry-run application at this point; the balance is only consumed when the
// payment confirms. Card and wallet channels return a redirect URL; bank
// transfer records a deadline and parks the reservation in AWAITING_TRANSFER;
// a fully voucher-covered payment confirms on the spot.
func (s *PaymentService) Initiate(ctx context.Context, userID, reservationID uuid.UUID, req InitiatePaymentRequest) (*PaymentResponse, error) {
	r, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !r.IsOwner(userID) {
		return nil, shared.ErrUnauthorized
	}
	if r.Status != reservation.StatusPendingPayment {
		return nil, shared.NewDomainError("INVALID_STATE", "Reservation is not awaiting payment")
	}
	if existing, err := s.paymentRepo.FindByReservation(ctx, reservationID); err == nil && existing != nil {
		if existing.Status != billing.PaymentStatusFailed && existing.Status != billing.PaymentStatusCancelled {
			return nil, shared.NewDomainError("PAYMENT_EXISTS", "Reservation already has a payment in progress")
		}
	} else if err != nil && err != shared.ErrNotFound {
		return nil, err
	}

	voucherAmount := decimal.Zero
	if req.VoucherID != nil {
		voucher, err := s.voucherRepo.FindByID(ctx, *req.VoucherID)
		if err != nil {
			return nil, err
		}
		requested := r.TotalPrice
		if req.VoucherAmount != nil && req.VoucherAmount.IsPositive() && req.VoucherAmount.LessThan(requested) {
			requested = *req.VoucherAmount
		}
		voucherAmount, err = voucher.Apply(userID, requested, time.Now())
		if err != nil {
			return nil, err
		}
	}

	payment, err := billing.NewPayment(reservationID, req.Channel, r.TotalPrice, voucherAmount, req.VoucherID)
	if err != nil {
		return nil, err
	}

	// Full voucher coverage needs no gateway round trip
	if payment.IsZeroCharge() {
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return nil, err
		}
		if err := s.Confirm(ctx, payment.ID, ""); err != nil {
			return nil, err
		}
		confirmed, err := s.paymentRepo.FindByID(ctx, payment.ID)
		if err != nil {
			return nil, err
		}
		resp := ToPaymentResponse(confirmed)
		return &resp, nil
	}

	switch req.Channel {
	case billing.ChannelBankTransfer:
		deadline, err := billing.ComputeTransferDeadline(time.Now(), r.EventStart)
		if err != nil {
			return nil, err
		}
		payment.SetTransferDeadline(deadline)
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return nil, err
		}
		moved, err := s.reservationRepo.UpdateStatusIf(ctx, r.ID,
			[]reservation.ReservationStatus{reservation.StatusPendingPayment},
			reservation.StatusAwaitingTransfer)
		if err != nil {
			return nil, err
		}
		if !moved {
			return nil, shared.NewDomainError("INVALID_STATE", "Reservation is not awaiting payment")
		}
		resp := ToPaymentResponse(payment)
		return &resp, nil

	case billing.ChannelCard, billing.ChannelPayPay:
		gw, err := s.gateway(req.Channel)
		if err != nil {
			return nil, err
		}
		gwCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
		defer cancel()
		session, err := gw.CreateCheckout(gwCtx, billing.CheckoutRequest{
			Amount:      payment.ChargeAmountMoney(),
			Description: "Farm experience reservation",
			Metadata: map[string]string{
				"payment_id":     payment.ID.String(),
				"reservation_id": r.ID.String(),
			},
		})
		if err != nil {
			s.logger.Warn("checkout creation failed",
				zap.String("reservation_id", r.ID.String()),
				zap.String("channel", req.Channel.String()),
				zap.Error(err))
			return nil, shared.ErrGatewayFailure
		}
		payment.AttachSession(session.SessionID)
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return nil, err
		}
		resp := ToPaymentResponse(payment)
		resp.RedirectURL = session.RedirectURL
		return &resp, nil
	}

	return nil, shared.NewDomainError("INVALID_CHANNEL", "Unknown payment channel: "+req.Channel.String())
}

// Confirm settles a payment: it claims the PENDING payment, consumes the
// applied voucher balance, and confirms the reservation, all in one
// transaction. Replayed confirmations find the payment already claimed and
// return without side effects.
func (s *PaymentService) Confirm(ctx context.Context, paymentID uuid.UUID, externalChargeID string) error {
	var confirmed *reservation.Reservation
	var settled *billing.Payment

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		claimed, err := repos.Payments().UpdateStatusIf(ctx, paymentID,
			[]billing.PaymentStatus{billing.PaymentStatusPending},
			billing.PaymentStatusCompleted)
		if err != nil {
			return err
		}
		if !claimed {
			// Duplicate delivery; the first confirmation did the work
			return nil
		}

		payment, err := repos.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		now := time.Now()
		payment.ExternalChargeID = externalChargeID
		payment.PaidAt = &now
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		settled = payment

		if payment.VoucherID != nil && payment.VoucherAmount.IsPositive() {
			if err := repos.Vouchers().ConsumeBalance(ctx, *payment.VoucherID, payment.VoucherAmount); err != nil {
				return err
			}
		}

		moved, err := repos.Reservations().UpdateStatusIf(ctx, payment.ReservationID,
			reservation.PendingStatuses(), reservation.StatusConfirmed)
		if err != nil {
			return err
		}
		if !moved {
			return shared.NewDomainError("INVALID_STATE", "Reservation can no longer be confirmed")
		}

		confirmed, err = repos.Reservations().FindByID(ctx, payment.ReservationID)
		return err
	})
	if err != nil {
		return err
	}

	if settled != nil {
		s.publish(ctx, billing.NewPaymentCompletedEvent(settled))
	}
	if confirmed != nil {
		s.publish(ctx, reservation.NewReservationConfirmedEvent(confirmed))
		if s.notifier != nil {
			s.notifier.Notify(ctx, confirmed.UserID, shared.TemplateReservationConfirmed, map[string]string{
				"reservation_id": confirmed.ID.String(),
			})
		}
	}
	return nil
}

// ConfirmBySession verifies a checkout session against its gateway and, if
// paid, confirms the backing payment. Used by webhook handlers; safe under
// at-least-once delivery.
func (s *PaymentService) ConfirmBySession(ctx context.Context, sessionID string) error {
	payment, err := s.paymentRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}

	gw, err := s.gateway(payment.Channel)
	if err != nil {
		return err
	}
	gwCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	status, err := gw.ConfirmCheckout(gwCtx, sessionID)
	if err != nil {
		s.logger.Warn("checkout confirmation failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return shared.ErrGatewayFailure
	}
	if !status.Paid {
		return shared.ErrPaymentNotCompleted
	}
	return s.Confirm(ctx, payment.ID, status.ExternalChargeID)
}

// ConfirmTransfer records receipt of a bank transfer. Only the owner of the
// event being reserved may confirm.
func (s *PaymentService) ConfirmTransfer(ctx context.Context, requestingUserID, paymentID uuid.UUID) error {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.Channel != billing.ChannelBankTransfer {
		return shared.NewDomainError("INVALID_CHANNEL", "Payment is not a bank transfer")
	}

	r, err := s.reservationRepo.FindByID(ctx, payment.ReservationID)
	if err != nil {
		return err
	}
	event, err := s.eventRepo.FindByID(ctx, r.EventID)
	if err != nil {
		return err
	}
	if event.OwnerUserID != requestingUserID {
		return shared.ErrUnauthorized
	}

	return s.Confirm(ctx, paymentID, "")
}

// Refund returns the refundable share of the charged amount per the refund
// tiers. The gateway call happens before any local mutation, so a failed or
// timed-out refund leaves the payment COMPLETED and retryable.
func (s *PaymentService) Refund(ctx context.Context, reservationID uuid.UUID) (decimal.Decimal, error) {
	payment, err := s.paymentRepo.FindByReservation(ctx, reservationID)
	if err != nil {
		return decimal.Zero, err
	}
	if payment.Status != billing.PaymentStatusCompleted {
		return decimal.Zero, shared.ErrPaymentNotCompleted
	}

	r, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return decimal.Zero, err
	}

	percentage := reservation.RefundPercentage(time.Now(), r.EventStart)
	amount := reservation.RefundAmount(payment.ChargeAmountMoney(), percentage)

	if amount.IsPositive() {
		gw, err := s.gateway(payment.Channel)
		if err != nil {
			return decimal.Zero, err
		}
		gwCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
		defer cancel()
		if err := gw.Refund(gwCtx, payment.ExternalChargeID, amount); err != nil {
			s.logger.Warn("gateway refund failed",
				zap.String("payment_id", payment.ID.String()),
				zap.String("amount", amount.String()),
				zap.Error(err))
			return decimal.Zero, shared.ErrGatewayFailure
		}
	}

	if err := payment.RecordRefund(amount.Amount()); err != nil {
		return decimal.Zero, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
		return decimal.Zero, err
	}

	s.publish(ctx, billing.NewPaymentRefundedEvent(payment))
	if s.notifier != nil {
		s.notifier.Notify(ctx, r.UserID, shared.TemplatePaymentRefunded, map[string]string{
			"reservation_id": r.ID.String(),
			"amount":         amount.Amount().String(),
		})
	}
	return amount.Amount(), nil
}

// GetByReservation returns the payment backing a reservation, visible to the
// reservation owner and the event owner.
func (s *PaymentService) GetByReservation(ctx context.Context, userID, reservationID uuid.UUID) (*PaymentResponse, error) {
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
	payment, err := s.paymentRepo.FindByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// CancelPending voids a payment that never completed, used when its
// reservation is cancelled while still unpaid.
func (s *PaymentService) CancelPending(ctx context.Context, reservationID uuid.UUID) error {
	payment, err := s.paymentRepo.FindByReservation(ctx, reservationID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil
		}
		return err
	}
	_, err = s.paymentRepo.UpdateStatusIf(ctx, payment.ID,
		[]billing.PaymentStatus{billing.PaymentStatusPending},
		billing.PaymentStatusCancelled)
	return err
}
