package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	billingapp "github.com/farmeet/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// Maximum callback payload size (64KB, gateway notifications are small)
const maxCallbackPayloadSize = 65536

// PaymentCallbackHandler handles payment gateway callback endpoints.
// These endpoints are called by PayPay and do not require authentication;
// the notification is untrusted and only names a session, the payment
// state is re-verified against the gateway before anything changes.
type PaymentCallbackHandler struct {
	BaseHandler
	callbackService *billingapp.CallbackService
}

// NewPaymentCallbackHandler creates a new PaymentCallbackHandler
func NewPaymentCallbackHandler(callbackService *billingapp.CallbackService) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{
		callbackService: callbackService,
	}
}

// PaymentCallbackResponse represents the response for payment callback status
//
//	@Description	Payment callback status response
type PaymentCallbackResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"Payment processed successfully"`
}

// payPayNotification is the subset of the PayPay webhook payload we act on
type payPayNotification struct {
	NotificationType  string `json:"notification_type"`
	PaymentID         string `json:"paymentId"`
	MerchantPaymentID string `json:"merchantPaymentId"`
	State             string `json:"state"`
}

// HandlePayPayCallback godoc
//
//	@ID				handlePayPayCallback
//	@Summary		Handle PayPay payment callback
//	@Description	Receive and process a payment completion notification from PayPay
//	@Tags			payment-callbacks
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	PaymentCallbackResponse	"Notification processed"
//	@Failure		400	{object}	PaymentCallbackResponse	"Invalid payload"
//	@Failure		413	{object}	PaymentCallbackResponse	"Payload too large"
//	@Failure		500	{object}	PaymentCallbackResponse	"Internal server error"
//	@Router			/webhooks/paypay [post]
func (h *PaymentCallbackHandler) HandlePayPayCallback(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, PaymentCallbackResponse{
			Success: false,
			Message: "Failed to read request body",
		})
		return
	}
	if len(payload) > maxCallbackPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, PaymentCallbackResponse{
			Success: false,
			Message: "Payload too large",
		})
		return
	}

	var notification payPayNotification
	if err := json.Unmarshal(payload, &notification); err != nil {
		c.JSON(http.StatusBadRequest, PaymentCallbackResponse{
			Success: false,
			Message: "Invalid notification payload",
		})
		return
	}

	// Only settled transactions carry state we act on. Everything else is
	// acknowledged so PayPay stops redelivering.
	if notification.State != "COMPLETED" {
		c.JSON(http.StatusOK, PaymentCallbackResponse{
			Success: true,
			Message: "Notification acknowledged",
		})
		return
	}

	eventID := notification.PaymentID
	if eventID == "" {
		eventID = notification.MerchantPaymentID
	}

	err = h.callbackService.HandleCheckoutCompleted(c.Request.Context(), eventID, notification.MerchantPaymentID)
	if err != nil {
		if errors.Is(err, billingapp.ErrCallbackInvalidPayload) {
			c.JSON(http.StatusBadRequest, PaymentCallbackResponse{
				Success: false,
				Message: "Invalid notification payload",
			})
			return
		}
		// A 500 makes PayPay retry the delivery
		c.JSON(http.StatusInternalServerError, PaymentCallbackResponse{
			Success: false,
			Message: "Notification processing failed",
		})
		return
	}

	c.JSON(http.StatusOK, PaymentCallbackResponse{
		Success: true,
		Message: "Payment processed successfully",
	})
}
