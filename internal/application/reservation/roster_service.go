package reservation

import (
	"context"

	appbilling "github.com/farmeet/backend/internal/application/billing"
	"github.com/farmeet/backend/internal/domain/catalog"
	"github.com/farmeet/backend/internal/domain/reservation"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RosterService manages the group members of a reservation: invite codes,
// joining, leaving, and owner-forced removal.
type RosterService struct {
	scope           appbilling.TransactionScope
	reservationRepo reservation.ReservationRepository
	participantRepo reservation.ParticipantRepository
	eventRepo       catalog.EventRepository
	logger          *zap.Logger
}

// NewRosterService creates a new RosterService
func NewRosterService(
	scope appbilling.TransactionScope,
	reservationRepo reservation.ReservationRepository,
	participantRepo reservation.ParticipantRepository,
	eventRepo catalog.EventRepository,
	logger *zap.Logger,
) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		scope:           scope,
		reservationRepo: reservationRepo,
		participantRepo: participantRepo,
		eventRepo:       eventRepo,
		logger:          logger,
	}
}

// InviteCode returns the reservation's invite code, generating it on first
// request. The conditional write keeps the code stable when the owner asks
// from two devices at once.
func (s *RosterService) InviteCode(ctx context.Context, userID, reservationID uuid.UUID) (*InviteCodeResponse, error) {
	r, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !r.IsOwner(userID) {
		return nil, shared.ErrUnauthorized
	}
	if !r.Status.IsActive() {
		return nil, shared.ErrReservationCancelled
	}
	if r.InviteCode != nil {
		return &InviteCodeResponse{InviteCode: *r.InviteCode}, nil
	}

	code, err := s.reservationRepo.SetInviteCode(ctx, reservationID, reservation.NewInviteCode())
	if err != nil {
		return nil, err
	}
	return &InviteCodeResponse{InviteCode: code}, nil
}

// Join adds the calling user to the group behind an invite code, consuming
// one of the reservation's spare seats in the requested category. Inside the
// transaction the reservation row is locked before the category count, so
// two racing joins serialize instead of both reading the last seat as free;
// the count alone would not block a concurrent uncommitted insert.
func (s *RosterService) Join(ctx context.Context, userID uuid.UUID, req JoinReservationRequest) (*ParticipantResponse, error) {
	r, err := s.reservationRepo.FindByInviteCode(ctx, req.InviteCode)
	if err != nil {
		return nil, err
	}
	if !r.Status.IsActive() {
		return nil, shared.ErrReservationCancelled
	}
	if r.IsOwner(userID) {
		return nil, shared.ErrOwnerCannotJoin
	}

	participant, err := reservation.NewParticipant(r.ID, userID, req.Category)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
		locked, err := repos.Reservations().FindByIDForUpdate(ctx, r.ID)
		if err != nil {
			return err
		}
		// Re-check against the locked row: the reservation may have been
		// cancelled between the invite-code lookup and here.
		if !locked.Status.IsActive() {
			return shared.ErrReservationCancelled
		}

		participants := repos.Participants()

		existing, err := participants.FindByReservationAndUser(ctx, locked.ID, userID)
		if err != nil && err != shared.ErrNotFound {
			return err
		}
		if existing != nil {
			return shared.ErrAlreadyJoined
		}

		count, err := participants.CountByCategory(ctx, locked.ID, req.Category)
		if err != nil {
			return err
		}
		if count >= int64(locked.SeatsFor(req.Category)) {
			return shared.ErrCapacityFull
		}

		return participants.Save(ctx, participant)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("participant joined",
		zap.String("reservation_id", r.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("category", req.Category.String()))

	resp := ToParticipantResponse(participant)
	return &resp, nil
}

// Leave removes the calling user from a reservation's group
func (s *RosterService) Leave(ctx context.Context, userID, reservationID uuid.UUID) error {
	deleted, err := s.participantRepo.DeleteByReservationAndUser(ctx, reservationID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return shared.ErrNotParticipant
	}
	return nil
}

// Remove force-removes a participant; only the reservation owner may do so
func (s *RosterService) Remove(ctx context.Context, requestingUserID, reservationID, participantID uuid.UUID) error {
	r, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if !r.IsOwner(requestingUserID) {
		return shared.ErrUnauthorized
	}

	participant, err := s.participantRepo.FindByReservation(ctx, reservationID)
	if err != nil {
		return err
	}
	for i := range participant {
		if participant[i].ID == participantID {
			return s.participantRepo.Delete(ctx, participantID)
		}
	}
	return shared.ErrNotParticipant
}

// List returns a reservation's participants to its owner, the event owner,
// or any current participant.
func (s *RosterService) List(ctx context.Context, userID, reservationID uuid.UUID) ([]ParticipantResponse, error) {
	r, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.FindByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	allowed := r.IsOwner(userID)
	if !allowed {
		for i := range participants {
			if participants[i].UserID == userID {
				allowed = true
				break
			}
		}
	}
	if !allowed {
		event, err := s.eventRepo.FindByID(ctx, r.EventID)
		if err != nil {
			return nil, err
		}
		allowed = event.OwnerUserID == userID
	}
	if !allowed {
		return nil, shared.ErrUnauthorized
	}

	responses := make([]ParticipantResponse, len(participants))
	for i := range participants {
		responses[i] = ToParticipantResponse(&participants[i])
	}
	return responses, nil
}
