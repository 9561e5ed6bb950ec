package billing

import (
	"context"
	"errors"

	"github.com/farmeet/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	// ErrCallbackInvalidPayload is returned when the callback payload is invalid
	ErrCallbackInvalidPayload = errors.New("payment callback: invalid payload")
	// ErrCallbackVerificationFailed is returned when callback verification fails
	ErrCallbackVerificationFailed = errors.New("payment callback: signature verification failed")
)

// CallbackService processes payment gateway webhooks. External gateways
// deliver at-least-once, so every callback is deduplicated through the
// idempotency store before any state is touched.
type CallbackService struct {
	payments    *PaymentService
	idempotency shared.IdempotencyStore
	config      shared.IdempotencyConfig
	logger      *zap.Logger
}

// NewCallbackService creates a new CallbackService
func NewCallbackService(payments *PaymentService, store shared.IdempotencyStore, config shared.IdempotencyConfig, logger *zap.Logger) *CallbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallbackService{
		payments:    payments,
		idempotency: store,
		config:      config,
		logger:      logger,
	}
}

// HandleCheckoutCompleted processes a completed-checkout notification
// identified by the gateway's event ID and checkout session ID.
func (s *CallbackService) HandleCheckoutCompleted(ctx context.Context, eventID, sessionID string) error {
	if eventID == "" || sessionID == "" {
		return ErrCallbackInvalidPayload
	}

	if s.config.Enabled {
		processed, err := s.idempotency.IsProcessed(ctx, eventID)
		if err != nil {
			// Store outage: fall through, the status-guarded confirmation
			// still absorbs the replay
			s.logger.Warn("idempotency store unavailable", zap.Error(err))
		} else if processed {
			s.logger.Info("duplicate webhook skipped",
				zap.String("event_id", eventID),
				zap.String("session_id", sessionID))
			return nil
		}
	}

	s.logger.Info("payment webhook received",
		zap.String("event_id", eventID),
		zap.String("session_id", sessionID))

	if err := s.payments.ConfirmBySession(ctx, sessionID); err != nil {
		return err
	}

	// Marked only after success so a failed delivery can be retried
	if s.config.Enabled {
		if _, err := s.idempotency.MarkProcessed(ctx, eventID, s.config.TTL); err != nil {
			s.logger.Warn("failed to mark webhook processed", zap.Error(err))
		}
	}
	return nil
}
