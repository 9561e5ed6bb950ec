package handler

import (
	reservationapp "github.com/farmeet/backend/internal/application/reservation"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/farmeet/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReservationHandler handles reservation lifecycle API endpoints
type ReservationHandler struct {
	BaseHandler
	reservationService *reservationapp.ReservationService
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservationService *reservationapp.ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

// listQuery binds the pagination parameters shared by the list endpoints
// and converts them into a repository filter.
func listFilter(c *gin.Context) (shared.Filter, bool) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, false
	}
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}, true
}

// Create godoc
// @Summary      Create a reservation
// @Description  Reserve seats at an experience event for the calling user's party
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        request body reservationapp.CreateReservationRequest true "Reservation request"
// @Success      201 {object} dto.Response{data=reservationapp.ReservationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	var req reservationapp.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.reservationService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get godoc
// @Summary      Get a reservation
// @Description  Retrieve a reservation visible to the caller (holder or farm owner)
// @Tags         reservations
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      200 {object} dto.Response{data=reservationapp.ReservationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
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

	resp, err := h.reservationService.Get(c.Request.Context(), userID, reservationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListMine godoc
// @Summary      List my reservations
// @Description  Retrieve the caller's reservations, optionally scoped to active or history
// @Tags         reservations
// @Produce      json
// @Param        scope query string false "Scope filter" Enums(active, history)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]reservationapp.ReservationResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations [get]
func (h *ReservationHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	filter, ok := listFilter(c)
	if !ok {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	resp, err := h.reservationService.ListMine(c.Request.Context(), userID, c.Query("scope"), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListForEvent godoc
// @Summary      List reservations for an event
// @Description  Retrieve an event's reservations. Only the farm owner may call this.
// @Tags         reservations
// @Produce      json
// @Param        id path string true "Event ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]reservationapp.ReservationResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /events/{id}/reservations [get]
func (h *ReservationHandler) ListForEvent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid event ID format")
		return
	}

	filter, ok := listFilter(c)
	if !ok {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	resp, err := h.reservationService.ListForEvent(c.Request.Context(), userID, eventID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel godoc
// @Summary      Cancel a reservation
// @Description  Cancel the caller's reservation, releasing seats and refunding per the tier in effect
// @Tags         reservations
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      204 "Cancelled"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c *gin.Context) {
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

	if err := h.reservationService.Cancel(c.Request.Context(), userID, reservationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RefundPreview godoc
// @Summary      Preview a cancellation refund
// @Description  Report the refund percentage and amount cancelling right now would produce
// @Tags         reservations
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      200 {object} dto.Response{data=reservationapp.RefundPreviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reservations/{id}/refund-preview [get]
func (h *ReservationHandler) RefundPreview(c *gin.Context) {
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

	resp, err := h.reservationService.RefundPreview(c.Request.Context(), userID, reservationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
