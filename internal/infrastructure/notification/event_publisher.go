package notification

import (
	"context"

	"github.com/farmeet/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LogEventPublisher implements shared.EventPublisher by writing each domain
// event to the structured log. The log line carries the full event envelope,
// so the stream doubles as an audit trail of lifecycle transitions and can
// be shipped to a broker later without touching the producers.
type LogEventPublisher struct {
	logger *zap.Logger
}

// NewLogEventPublisher creates a new LogEventPublisher
func NewLogEventPublisher(logger *zap.Logger) *LogEventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogEventPublisher{logger: logger}
}

// Publish records the event. It never fails the caller.
func (p *LogEventPublisher) Publish(ctx context.Context, event shared.DomainEvent) error {
	p.logger.Info("domain event",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// Ensure LogEventPublisher implements EventPublisher
var _ shared.EventPublisher = (*LogEventPublisher)(nil)
