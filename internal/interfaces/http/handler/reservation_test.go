package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	billingapp "github.com/farmeet/backend/internal/application/billing"
	reservationapp "github.com/farmeet/backend/internal/application/reservation"
	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/catalog"
	"github.com/farmeet/backend/internal/domain/reservation"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/farmeet/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fake repositories for driving the handlers through real application services

type fakeEventRepo struct {
	events map[uuid.UUID]*catalog.ExperienceEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*catalog.ExperienceEvent)}
}

func (m *fakeEventRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ExperienceEvent, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (m *fakeEventRepo) ReserveCapacity(ctx context.Context, id uuid.UUID, seats int) error {
	e, ok := m.events[id]
	if !ok {
		return shared.ErrNotFound
	}
	if e.RemainingCapacity < seats {
		return shared.ErrInsufficientCapacity
	}
	e.RemainingCapacity -= seats
	return nil
}

func (m *fakeEventRepo) ReleaseCapacity(ctx context.Context, id uuid.UUID, seats int) error {
	e, ok := m.events[id]
	if !ok {
		return shared.ErrNotFound
	}
	e.RemainingCapacity += seats
	if e.RemainingCapacity > e.Capacity {
		e.RemainingCapacity = e.Capacity
	}
	return nil
}

func (m *fakeEventRepo) Save(ctx context.Context, event *catalog.ExperienceEvent) error {
	m.events[event.ID] = event
	return nil
}

type fakeReservationRepo struct {
	reservations map[uuid.UUID]*reservation.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[uuid.UUID]*reservation.Reservation)}
}

func (m *fakeReservationRepo) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if r, ok := m.reservations[id]; ok {
		return r, nil
	}
	return nil, shared.ErrNotFound
}

func (m *fakeReservationRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return m.FindByID(ctx, id)
}

func (m *fakeReservationRepo) FindByInviteCode(ctx context.Context, code string) (*reservation.Reservation, error) {
	for _, r := range m.reservations {
		if r.InviteCode != nil && *r.InviteCode == code {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *fakeReservationRepo) FindByUser(ctx context.Context, userID uuid.UUID, statuses []reservation.ReservationStatus, filter shared.Filter) ([]reservation.Reservation, error) {
	var result []reservation.Reservation
	for _, r := range m.reservations {
		if r.UserID != userID {
			continue
		}
		if len(statuses) > 0 && !statusIn(r.Status, statuses) {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (m *fakeReservationRepo) FindByEvent(ctx context.Context, eventID uuid.UUID, statuses []reservation.ReservationStatus, filter shared.Filter) ([]reservation.Reservation, error) {
	var result []reservation.Reservation
	for _, r := range m.reservations {
		if r.EventID != eventID {
			continue
		}
		if len(statuses) > 0 && !statusIn(r.Status, statuses) {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (m *fakeReservationRepo) FindConfirmedStartedBefore(ctx context.Context, instant time.Time, limit int) ([]reservation.Reservation, error) {
	return nil, nil
}

func (m *fakeReservationRepo) FindPendingExpired(ctx context.Context, createdBefore, startingBefore time.Time, limit int) ([]reservation.Reservation, error) {
	return nil, nil
}

func (m *fakeReservationRepo) Save(ctx context.Context, r *reservation.Reservation) error {
	m.reservations[r.ID] = r
	return nil
}

func (m *fakeReservationRepo) SaveWithLock(ctx context.Context, r *reservation.Reservation) error {
	m.reservations[r.ID] = r
	return nil
}

func (m *fakeReservationRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []reservation.ReservationStatus, to reservation.ReservationStatus) (bool, error) {
	r, ok := m.reservations[id]
	if !ok {
		return false, shared.ErrNotFound
	}
	if !statusIn(r.Status, from) {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (m *fakeReservationRepo) SetInviteCode(ctx context.Context, id uuid.UUID, code string) (string, error) {
	r, ok := m.reservations[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	if r.InviteCode != nil {
		return *r.InviteCode, nil
	}
	r.InviteCode = &code
	return code, nil
}

func statusIn(s reservation.ReservationStatus, set []reservation.ReservationStatus) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

type fakeParticipantRepo struct {
	participants map[uuid.UUID]*reservation.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[uuid.UUID]*reservation.Participant)}
}

func (m *fakeParticipantRepo) FindByReservation(ctx context.Context, reservationID uuid.UUID) ([]reservation.Participant, error) {
	var result []reservation.Participant
	for _, p := range m.participants {
		if p.ReservationID == reservationID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *fakeParticipantRepo) FindByReservationAndUser(ctx context.Context, reservationID, userID uuid.UUID) (*reservation.Participant, error) {
	for _, p := range m.participants {
		if p.ReservationID == reservationID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *fakeParticipantRepo) CountByCategory(ctx context.Context, reservationID uuid.UUID, category reservation.ParticipantCategory) (int64, error) {
	var count int64
	for _, p := range m.participants {
		if p.ReservationID == reservationID && p.Category == category {
			count++
		}
	}
	return count, nil
}

func (m *fakeParticipantRepo) Save(ctx context.Context, p *reservation.Participant) error {
	m.participants[p.ID] = p
	return nil
}

func (m *fakeParticipantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.participants, id)
	return nil
}

func (m *fakeParticipantRepo) DeleteByReservationAndUser(ctx context.Context, reservationID, userID uuid.UUID) (bool, error) {
	for id, p := range m.participants {
		if p.ReservationID == reservationID && p.UserID == userID {
			delete(m.participants, id)
			return true, nil
		}
	}
	return false, nil
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]*billing.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*billing.Payment)}
}

func (m *fakePaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (m *fakePaymentRepo) FindByReservation(ctx context.Context, reservationID uuid.UUID) (*billing.Payment, error) {
	for _, p := range m.payments {
		if p.ReservationID == reservationID {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *fakePaymentRepo) FindBySessionID(ctx context.Context, sessionID string) (*billing.Payment, error) {
	for _, p := range m.payments {
		if sessionID != "" && p.ExternalSessionID == sessionID {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *fakePaymentRepo) Save(ctx context.Context, p *billing.Payment) error {
	m.payments[p.ID] = p
	return nil
}

func (m *fakePaymentRepo) SaveWithLock(ctx context.Context, p *billing.Payment) error {
	m.payments[p.ID] = p
	return nil
}

func (m *fakePaymentRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []billing.PaymentStatus, to billing.PaymentStatus) (bool, error) {
	p, ok := m.payments[id]
	if !ok {
		return false, shared.ErrNotFound
	}
	for _, candidate := range from {
		if p.Status == candidate {
			p.Status = to
			return true, nil
		}
	}
	return false, nil
}

// passthroughScope executes the transactional function directly against the
// fakes; commit/rollback behavior is covered by the persistence tests.
type passthroughScope struct {
	events       *fakeEventRepo
	reservations *fakeReservationRepo
	participants *fakeParticipantRepo
	payments     *fakePaymentRepo
}

func (s *passthroughScope) Execute(ctx context.Context, fn func(repos billingapp.TransactionalRepositories) error) error {
	return fn(s)
}

func (s *passthroughScope) Events() catalog.EventRepository                  { return s.events }
func (s *passthroughScope) Reservations() reservation.ReservationRepository { return s.reservations }
func (s *passthroughScope) Participants() reservation.ParticipantRepository { return s.participants }
func (s *passthroughScope) Payments() billing.PaymentRepository             { return s.payments }
func (s *passthroughScope) Vouchers() billing.VoucherRepository             { return nil }

type reservationHandlerFixture struct {
	router       *gin.Engine
	events       *fakeEventRepo
	reservations *fakeReservationRepo
	participants *fakeParticipantRepo
	payments     *fakePaymentRepo
}

func newReservationHandlerFixture(t *testing.T) *reservationHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &reservationHandlerFixture{
		events:       newFakeEventRepo(),
		reservations: newFakeReservationRepo(),
		participants: newFakeParticipantRepo(),
		payments:     newFakePaymentRepo(),
	}
	scope := &passthroughScope{
		events:       f.events,
		reservations: f.reservations,
		participants: f.participants,
		payments:     f.payments,
	}

	reservationService := reservationapp.NewReservationService(reservationapp.ReservationServiceConfig{
		Scope:           scope,
		ReservationRepo: f.reservations,
		EventRepo:       f.events,
		PaymentRepo:     f.payments,
	})
	rosterService := reservationapp.NewRosterService(scope, f.reservations, f.participants, f.events, nil)

	reservationHandler := NewReservationHandler(reservationService)
	rosterHandler := NewRosterHandler(rosterService)

	r := gin.New()
	r.POST("/reservations", reservationHandler.Create)
	r.GET("/reservations", reservationHandler.ListMine)
	r.GET("/reservations/:id", reservationHandler.Get)
	r.DELETE("/reservations/:id", reservationHandler.Cancel)
	r.GET("/reservations/:id/refund-preview", reservationHandler.RefundPreview)
	r.GET("/events/:id/reservations", reservationHandler.ListForEvent)
	r.POST("/reservations/:id/invite-code", rosterHandler.InviteCode)
	r.POST("/reservations/join", rosterHandler.Join)
	r.DELETE("/reservations/:id/participants/me", rosterHandler.Leave)
	r.DELETE("/reservations/:id/participants/:pid", rosterHandler.Remove)
	r.GET("/reservations/:id/participants", rosterHandler.List)
	f.router = r
	return f
}

func (f *reservationHandlerFixture) addEvent(t *testing.T, ownerID uuid.UUID, capacity int, startIn time.Duration) *catalog.ExperienceEvent {
	t.Helper()
	event, err := catalog.NewExperienceEvent(uuid.New(), ownerID, "Harvest Tour",
		time.Now().Add(startIn), capacity, decimal.NewFromInt(5000), nil)
	require.NoError(t, err)
	f.events.events[event.ID] = event
	return event
}

func (f *reservationHandlerFixture) addReservation(t *testing.T, userID uuid.UUID, event *catalog.ExperienceEvent, adults int) *reservation.Reservation {
	t.Helper()
	r, err := reservation.NewReservation(userID, event, adults, 0, 0)
	require.NoError(t, err)
	f.reservations.reservations[r.ID] = r
	return r
}

func (f *reservationHandlerFixture) do(method, path string, userID uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		payload, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("X-User-ID", userID.String())
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestReservationHandler_Create(t *testing.T) {
	f := newReservationHandlerFixture(t)
	userID := uuid.New()
	event := f.addEvent(t, uuid.New(), 10, 10*24*time.Hour)

	w := f.do(http.MethodPost, "/reservations", userID, gin.H{
		"event_id": event.ID,
		"adults":   2,
		"children": 1,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, event.ID.String(), data["event_id"])
	assert.Equal(t, float64(3), data["total_people"])
	assert.Equal(t, "PENDING_PAYMENT", data["status"])

	// Seats are held immediately
	assert.Equal(t, 7, event.RemainingCapacity)
}

func TestReservationHandler_Create_InsufficientCapacity(t *testing.T) {
	f := newReservationHandlerFixture(t)
	event := f.addEvent(t, uuid.New(), 2, 10*24*time.Hour)

	w := f.do(http.MethodPost, "/reservations", uuid.New(), gin.H{
		"event_id": event.ID,
		"adults":   3,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 2, event.RemainingCapacity)
}

func TestReservationHandler_Create_MissingIdentity(t *testing.T) {
	f := newReservationHandlerFixture(t)
	event := f.addEvent(t, uuid.New(), 10, 10*24*time.Hour)

	w := f.do(http.MethodPost, "/reservations", uuid.Nil, gin.H{
		"event_id": event.ID,
		"adults":   1,
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReservationHandler_Get(t *testing.T) {
	f := newReservationHandlerFixture(t)
	userID := uuid.New()
	farmOwnerID := uuid.New()
	event := f.addEvent(t, farmOwnerID, 10, 10*24*time.Hour)
	r := f.addReservation(t, userID, event, 2)

	t.Run("holder can read", func(t *testing.T) {
		w := f.do(http.MethodGet, "/reservations/"+r.ID.String(), userID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("farm owner can read", func(t *testing.T) {
		w := f.do(http.MethodGet, "/reservations/"+r.ID.String(), farmOwnerID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("stranger cannot read", func(t *testing.T) {
		w := f.do(http.MethodGet, "/reservations/"+r.ID.String(), uuid.New(), nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := f.do(http.MethodGet, "/reservations/"+uuid.New().String(), userID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := f.do(http.MethodGet, "/reservations/not-a-uuid", userID, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReservationHandler_ListMine(t *testing.T) {
	f := newReservationHandlerFixture(t)
	userID := uuid.New()
	event := f.addEvent(t, uuid.New(), 20, 10*24*time.Hour)

	active := f.addReservation(t, userID, event, 1)
	cancelled := f.addReservation(t, userID, event, 1)
	cancelled.Status = reservation.StatusCancelled
	f.addReservation(t, uuid.New(), event, 1)

	w := f.do(http.MethodGet, "/reservations?scope=active", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items := resp.Data.([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, active.ID.String(), items[0].(map[string]interface{})["id"])

	w = f.do(http.MethodGet, "/reservations?scope=bogus", userID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationHandler_ListForEvent(t *testing.T) {
	f := newReservationHandlerFixture(t)
	farmOwnerID := uuid.New()
	event := f.addEvent(t, farmOwnerID, 20, 10*24*time.Hour)
	f.addReservation(t, uuid.New(), event, 1)
	f.addReservation(t, uuid.New(), event, 2)

	w := f.do(http.MethodGet, fmt.Sprintf("/events/%s/reservations", event.ID), farmOwnerID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.([]interface{}), 2)

	// Only the farm owner sees the event's reservations
	w = f.do(http.MethodGet, fmt.Sprintf("/events/%s/reservations", event.ID), uuid.New(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReservationHandler_Cancel(t *testing.T) {
	f := newReservationHandlerFixture(t)
	userID := uuid.New()
	event := f.addEvent(t, uuid.New(), 10, 10*24*time.Hour)
	event.RemainingCapacity = 8
	r := f.addReservation(t, userID, event, 2)

	w := f.do(http.MethodDelete, "/reservations/"+r.ID.String(), userID, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	assert.Equal(t, reservation.StatusCancelled, r.Status)
	assert.Equal(t, 10, event.RemainingCapacity)

	// Second cancel conflicts
	w = f.do(http.MethodDelete, "/reservations/"+r.ID.String(), userID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReservationHandler_RefundPreview_NoPayment(t *testing.T) {
	f := newReservationHandlerFixture(t)
	userID := uuid.New()
	event := f.addEvent(t, uuid.New(), 10, 10*24*time.Hour)
	r := f.addReservation(t, userID, event, 2)

	w := f.do(http.MethodGet, "/reservations/"+r.ID.String()+"/refund-preview", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(100), data["percentage"])
}

func TestRosterHandler_InviteCodeAndJoin(t *testing.T) {
	f := newReservationHandlerFixture(t)
	holderID := uuid.New()
	guestID := uuid.New()
	event := f.addEvent(t, uuid.New(), 10, 10*24*time.Hour)
	r := f.addReservation(t, holderID, event, 2)

	// Holder mints the code; a second request returns the same one
	w := f.do(http.MethodPost, "/reservations/"+r.ID.String()+"/invite-code", holderID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code := resp.Data.(map[string]interface{})["invite_code"].(string)
	require.Len(t, code, 8)

	w = f.do(http.MethodPost, "/reservations/"+r.ID.String()+"/invite-code", holderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, code, resp.Data.(map[string]interface{})["invite_code"])

	// Guests cannot mint codes
	w = f.do(http.MethodPost, "/reservations/"+r.ID.String()+"/invite-code", guestID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Guest joins with the code
	w = f.do(http.MethodPost, "/reservations/join", guestID, gin.H{
		"invite_code": code,
		"category":    "ADULT",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Joining twice conflicts
	w = f.do(http.MethodPost, "/reservations/join", guestID, gin.H{
		"invite_code": code,
		"category":    "ADULT",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Roster is visible to the holder
	w = f.do(http.MethodGet, "/reservations/"+r.ID.String()+"/participants", holderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.([]interface{}), 1)

	// Guest leaves
	w = f.do(http.MethodDelete, "/reservations/"+r.ID.String()+"/participants/me", guestID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodDelete, "/reservations/"+r.ID.String()+"/participants/me", guestID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRosterHandler_Join_CategoryFull(t *testing.T) {
	f := newReservationHandlerFixture(t)
	holderID := uuid.New()
	event := f.addEvent(t, uuid.New(), 10, 10*24*time.Hour)
	r := f.addReservation(t, holderID, event, 1)

	w := f.do(http.MethodPost, "/reservations/"+r.ID.String()+"/invite-code", holderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code := resp.Data.(map[string]interface{})["invite_code"].(string)

	// One adult seat on the reservation, so the first guest fills it
	w = f.do(http.MethodPost, "/reservations/join", uuid.New(), gin.H{
		"invite_code": code,
		"category":    "ADULT",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodPost, "/reservations/join", uuid.New(), gin.H{
		"invite_code": code,
		"category":    "ADULT",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRosterHandler_Remove(t *testing.T) {
	f := newReservationHandlerFixture(t)
	holderID := uuid.New()
	guestID := uuid.New()
	event := f.addEvent(t, uuid.New(), 10, 10*24*time.Hour)
	r := f.addReservation(t, holderID, event, 2)

	p, err := reservation.NewParticipant(r.ID, guestID, reservation.CategoryAdult)
	require.NoError(t, err)
	require.NoError(t, f.participants.Save(context.Background(), p))

	// Only the holder may remove participants
	w := f.do(http.MethodDelete,
		fmt.Sprintf("/reservations/%s/participants/%s", r.ID, p.ID), guestID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodDelete,
		fmt.Sprintf("/reservations/%s/participants/%s", r.ID, p.ID), holderID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
