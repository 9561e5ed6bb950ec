package handler

import (
	billingapp "github.com/farmeet/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// VoucherHandler handles gift voucher API endpoints
type VoucherHandler struct {
	BaseHandler
	voucherService *billingapp.VoucherService
}

// NewVoucherHandler creates a new VoucherHandler
func NewVoucherHandler(voucherService *billingapp.VoucherService) *VoucherHandler {
	return &VoucherHandler{
		voucherService: voucherService,
	}
}

// Check godoc
// @Summary      Check a voucher code
// @Description  Report a voucher's face amount, balance and current usability
// @Tags         vouchers
// @Produce      json
// @Param        code path string true "Voucher code"
// @Success      200 {object} dto.Response{data=billingapp.VoucherResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /vouchers/check/{code} [get]
func (h *VoucherHandler) Check(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Voucher code is required")
		return
	}

	resp, err := h.voucherService.Check(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Redeem godoc
// @Summary      Redeem a voucher
// @Description  Bind a pending voucher code to the calling user, activating it
// @Tags         vouchers
// @Accept       json
// @Produce      json
// @Param        request body billingapp.RedeemVoucherRequest true "Redeem request"
// @Success      200 {object} dto.Response{data=billingapp.VoucherResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /vouchers/redeem [post]
func (h *VoucherHandler) Redeem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user identity")
		return
	}

	var req billingapp.RedeemVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.voucherService.Redeem(c.Request.Context(), userID, req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List godoc
// @Summary      List my vouchers
// @Description  List the caller's vouchers, optionally only those currently usable
// @Tags         vouchers
// @Produce      json
// @Param        usable query bool false "Only usable vouchers"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]billingapp.VoucherResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /vouchers [get]
func (h *VoucherHandler) List(c *gin.Context) {
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

	usableOnly := c.Query("usable") == "true"

	resp, err := h.voucherService.List(c.Request.Context(), userID, usableOnly, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
