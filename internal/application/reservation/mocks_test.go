package reservation

import (
	"context"
	"time"

	appbilling "github.com/farmeet/backend/internal/application/billing"
	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/catalog"
	"github.com/farmeet/backend/internal/domain/reservation"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/farmeet/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockReservationRepository is a mock implementation of reservation.ReservationRepository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByInviteCode(ctx context.Context, code string) (*reservation.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByUser(ctx context.Context, userID uuid.UUID, statuses []reservation.ReservationStatus, filter shared.Filter) ([]reservation.Reservation, error) {
	args := m.Called(ctx, userID, statuses, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, statuses []reservation.ReservationStatus, filter shared.Filter) ([]reservation.Reservation, error) {
	args := m.Called(ctx, eventID, statuses, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindConfirmedStartedBefore(ctx context.Context, instant time.Time, limit int) ([]reservation.Reservation, error) {
	args := m.Called(ctx, instant, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindPendingExpired(ctx context.Context, createdBefore, startingBefore time.Time, limit int) ([]reservation.Reservation, error) {
	args := m.Called(ctx, createdBefore, startingBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Save(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) SaveWithLock(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []reservation.ReservationStatus, to reservation.ReservationStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) SetInviteCode(ctx context.Context, id uuid.UUID, code string) (string, error) {
	args := m.Called(ctx, id, code)
	return args.String(0), args.Error(1)
}

// MockParticipantRepository is a mock implementation of reservation.ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) FindByReservation(ctx context.Context, reservationID uuid.UUID) ([]reservation.Participant, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reservation.Participant), args.Error(1)
}

func (m *MockParticipantRepository) FindByReservationAndUser(ctx context.Context, reservationID, userID uuid.UUID) (*reservation.Participant, error) {
	args := m.Called(ctx, reservationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Participant), args.Error(1)
}

func (m *MockParticipantRepository) CountByCategory(ctx context.Context, reservationID uuid.UUID, category reservation.ParticipantCategory) (int64, error) {
	args := m.Called(ctx, reservationID, category)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParticipantRepository) Save(ctx context.Context, p *reservation.Participant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockParticipantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockParticipantRepository) DeleteByReservationAndUser(ctx context.Context, reservationID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, reservationID, userID)
	return args.Bool(0), args.Error(1)
}

// MockEventRepository is a mock implementation of catalog.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ExperienceEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ExperienceEvent), args.Error(1)
}

func (m *MockEventRepository) ReserveCapacity(ctx context.Context, id uuid.UUID, seats int) error {
	args := m.Called(ctx, id, seats)
	return args.Error(0)
}

func (m *MockEventRepository) ReleaseCapacity(ctx context.Context, id uuid.UUID, seats int) error {
	args := m.Called(ctx, id, seats)
	return args.Error(0)
}

func (m *MockEventRepository) Save(ctx context.Context, event *catalog.ExperienceEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByReservation(ctx context.Context, reservationID uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindBySessionID(ctx context.Context, sessionID string) (*billing.Payment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *billing.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, p *billing.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []billing.PaymentStatus, to billing.PaymentStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

// MockVoucherRepository is a mock implementation of billing.VoucherRepository
type MockVoucherRepository struct {
	mock.Mock
}

func (m *MockVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.GiftVoucher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.GiftVoucher), args.Error(1)
}

func (m *MockVoucherRepository) FindByCode(ctx context.Context, code string) (*billing.GiftVoucher, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.GiftVoucher), args.Error(1)
}

func (m *MockVoucherRepository) FindByOwner(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]billing.GiftVoucher, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.GiftVoucher), args.Error(1)
}

func (m *MockVoucherRepository) Save(ctx context.Context, v *billing.GiftVoucher) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVoucherRepository) ConsumeBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockVoucherRepository) BindOwner(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

// MockPaymentGateway is a mock implementation of billing.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckout(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) ConfirmCheckout(ctx context.Context, sessionID string) (*billing.CheckoutStatus, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutStatus), args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, externalChargeID string, amount valueobject.Money) error {
	args := m.Called(ctx, externalChargeID, amount)
	return args.Error(0)
}

// MockNotifier records notification calls
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, template string, data map[string]string) {
	m.Called(ctx, userID, template, data)
}

// capturingPublisher collects published domain events for assertions
type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, event shared.DomainEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.EventType())
	}
	return types
}

// stubScope executes transactional functions directly against the mocks,
// without a real transaction.
type stubScope struct {
	events       catalog.EventRepository
	reservations reservation.ReservationRepository
	participants reservation.ParticipantRepository
	payments     billing.PaymentRepository
	vouchers     billing.VoucherRepository
}

func (s *stubScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return fn(s)
}

func (s *stubScope) Events() catalog.EventRepository                 { return s.events }
func (s *stubScope) Reservations() reservation.ReservationRepository { return s.reservations }
func (s *stubScope) Participants() reservation.ParticipantRepository { return s.participants }
func (s *stubScope) Payments() billing.PaymentRepository             { return s.payments }
func (s *stubScope) Vouchers() billing.VoucherRepository             { return s.vouchers }
