package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// StripeWebhookService verifies and dispatches Stripe webhook events.
// Card checkouts complete asynchronously, so the checkout.session.completed
// event is the authoritative signal that a card payment went through.
type StripeWebhookService struct {
	webhookSecret string
	callbacks     *CallbackService
	logger        *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(webhookSecret string, callbacks *CallbackService, logger *zap.Logger) *StripeWebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeWebhookService{
		webhookSecret: webhookSecret,
		callbacks:     callbacks,
		logger:        logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies the Stripe signature and processes the event.
// A nil result means the payload could not be trusted and the caller
// should reject the request outright.
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		s.logger.Error("webhook signature verification failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCallbackVerificationFailed, err)
	}

	s.logger.Info("processing stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	switch event.Type {
	case "checkout.session.completed":
		err = s.handleCheckoutCompleted(ctx, event)
	case "checkout.session.expired":
		// The pending payment stays on the reservation so the holder can
		// retry; the unpaid sweep reclaims the seats at the deadline.
		s.logger.Info("checkout session expired",
			zap.String("event_id", event.ID))
		result.Message = "Checkout expiry acknowledged"
	case "charge.refunded":
		// Refunds are initiated by us through the gateway adapter, so the
		// ledger is already settled by the time Stripe echoes this back.
		s.logger.Info("refund confirmed by gateway",
			zap.String("event_id", event.ID))
		result.Message = "Refund acknowledged"
	default:
		s.logger.Debug("unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Processed = false
		result.Message = "Event type not handled"
	}

	if err != nil {
		s.logger.Error("failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}

	return result, nil
}

func (s *StripeWebhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	if session.ID == "" {
		s.logger.Warn("checkout session event missing session ID",
			zap.String("event_id", event.ID))
		return ErrCallbackInvalidPayload
	}
	return s.callbacks.HandleCheckoutCompleted(ctx, event.ID, session.ID)
}
