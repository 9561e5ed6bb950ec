package handler

import (
	reservationapp "github.com/farmeet/backend/internal/application/reservation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RosterHandler handles group participant API endpoints
type RosterHandler struct {
	BaseHandler
	rosterService *reservationapp.RosterService
}

// NewRosterHandler creates a new RosterHandler
func NewRosterHandler(rosterService *reservationapp.RosterService) *RosterHandler {
	return &RosterHandler{
		rosterService: rosterService,
	}
}

// InviteCode godoc
// @Summary      Get a reservation's invite code
// @Description  Return the reservation's invite code, generating one on first request. Holder only.
// @Tags         roster
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      200 {object} dto.Response{data=reservationapp.InviteCodeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations/{id}/invite-code [post]
func (h *RosterHandler) InviteCode(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	resp, err := h.rosterService.InviteCode(c.Request.Context(), userID, reservationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Join godoc
// @Summary      Join a reservation
// @Description  Join a confirmed reservation's party using its invite code
// @Tags         roster
// @Accept       json
// @Produce      json
// @Param        request body reservationapp.JoinReservationRequest true "Join request"
// @Success      201 {object} dto.Response{data=reservationapp.ParticipantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations/join [post]
func (h *RosterHandler) Join(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	var req reservationapp.JoinReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.rosterService.Join(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Leave godoc
// @Summary      Leave a reservation
// @Description  Remove the caller from a reservation's party
// @Tags         roster
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      204 "Left"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations/{id}/participants/me [delete]
func (h *RosterHandler) Leave(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	if err := h.rosterService.Leave(c.Request.Context(), userID, reservationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Remove godoc
// @Summary      Remove a participant
// @Description  Remove a participant from the reservation's party. Holder only.
// @Tags         roster
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Param        pid path string true "Participant ID" format(uuid)
// @Success      204 "Removed"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations/{id}/participants/{pid} [delete]
func (h *RosterHandler) Remove(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	participantID, err := uuid.Parse(c.Param("pid"))
	if err != nil {
		h.BadRequest(c, "Invalid participant ID format")
		return
	}

	if err := h.rosterService.Remove(c.Request.Context(), userID, reservationID, participantID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// List godoc
// @Summary      List participants
// @Description  List a reservation's party. Visible to the holder, the farm owner and participants.
// @Tags         roster
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]reservationapp.ParticipantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations/{id}/participants [get]
func (h *RosterHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	resp, err := h.rosterService.List(c.Request.Context(), userID, reservationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
