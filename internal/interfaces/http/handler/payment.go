package handler

import (
	billingapp "github.com/farmeet/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Initiate godoc
// @Summary      Initiate a payment
// @Description  Start paying for a reservation over the chosen channel, optionally applying a voucher
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Param        request body billingapp.InitiatePaymentRequest true "Payment request"
// @Success      201 {object} dto.Response{data=billingapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/reservations/{id} [post]
func (h *PaymentHandler) Initiate(c *gin.Context) {
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

	var req billingapp.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.paymentService.Initiate(c.Request.Context(), userID, reservationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ConfirmTransfer godoc
// @Summary      Confirm a bank transfer
// @Description  Mark a bank-transfer payment as received. Only the farm owner may call this.
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      204 "Confirmed"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{id}/confirm-transfer [post]
func (h *PaymentHandler) ConfirmTransfer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	if err := h.paymentService.ConfirmTransfer(c.Request.Context(), userID, paymentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByReservation godoc
// @Summary      Get a reservation's payment
// @Description  Retrieve the payment backing a reservation. Holder or farm owner only.
// @Tags         payments
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/reservations/{id} [get]
func (h *PaymentHandler) GetByReservation(c *gin.Context) {
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

	resp, err := h.paymentService.GetByReservation(c.Request.Context(), userID, reservationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
