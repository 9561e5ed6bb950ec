package reservation

import (
	"time"

	"github.com/farmeet/backend/internal/domain/reservation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Reservation DTOs ====================

// CreateReservationRequest represents a request to reserve seats at an event
type CreateReservationRequest struct {
	EventID  uuid.UUID `json:"event_id" binding:"required"`
	Adults   int       `json:"adults" binding:"required,min=1,max=50"`
	Children int       `json:"children" binding:"min=0,max=50"`
	Infants  int       `json:"infants" binding:"min=0,max=50"`
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID          uuid.UUID                     `json:"id"`
	UserID      uuid.UUID                     `json:"user_id"`
	EventID     uuid.UUID                     `json:"event_id"`
	EventStart  time.Time                     `json:"event_start"`
	Adults      int                           `json:"adults"`
	Children    int                           `json:"children"`
	Infants     int                           `json:"infants"`
	TotalPeople int                           `json:"total_people"`
	TotalPrice  decimal.Decimal               `json:"total_price"`
	Status      reservation.ReservationStatus `json:"status"`
	InviteCode  *string                       `json:"invite_code,omitempty"`
	CreatedAt   time.Time                     `json:"created_at"`
}

// ToReservationResponse converts a domain reservation to its API representation
func ToReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		EventID:     r.EventID,
		EventStart:  r.EventStart,
		Adults:      r.Adults,
		Children:    r.Children,
		Infants:     r.Infants,
		TotalPeople: r.TotalPeople(),
		TotalPrice:  r.TotalPrice,
		Status:      r.Status,
		InviteCode:  r.InviteCode,
		CreatedAt:   r.CreatedAt,
	}
}

// RefundPreviewResponse tells the caller what cancelling now would return
type RefundPreviewResponse struct {
	Percentage       int             `json:"percentage"`
	ChargedAmount    decimal.Decimal `json:"charged_amount"`
	RefundableAmount decimal.Decimal `json:"refundable_amount"`
}

// ==================== Roster DTOs ====================

// JoinReservationRequest represents a request to join a group via invite code
type JoinReservationRequest struct {
	InviteCode string                          `json:"invite_code" binding:"required,len=8"`
	Category   reservation.ParticipantCategory `json:"category" binding:"required,oneof=ADULT CHILD INFANT"`
}

// ParticipantResponse represents a group participant in API responses
type ParticipantResponse struct {
	ID            uuid.UUID                       `json:"id"`
	ReservationID uuid.UUID                       `json:"reservation_id"`
	UserID        uuid.UUID                       `json:"user_id"`
	Category      reservation.ParticipantCategory `json:"category"`
	JoinedAt      time.Time                       `json:"joined_at"`
}

// ToParticipantResponse converts a domain participant to its API representation
func ToParticipantResponse(p *reservation.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		UserID:        p.UserID,
		Category:      p.Category,
		JoinedAt:      p.JoinedAt,
	}
}

// InviteCodeResponse carries a reservation's stable invite code
type InviteCodeResponse struct {
	InviteCode string `json:"invite_code"`
}
