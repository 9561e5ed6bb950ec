package notification

import (
	"context"

	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogNotifier implements shared.Notifier by writing structured log entries.
// It stands in for the push/mail delivery pipeline; downstream delivery
// workers consume the same template and data fields.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify records the notification. It never fails the caller.
func (n *LogNotifier) Notify(ctx context.Context, userID uuid.UUID, template string, data map[string]string) {
	fields := make([]zap.Field, 0, len(data)+2)
	fields = append(fields,
		zap.String("user_id", userID.String()),
		zap.String("template", template))
	for k, v := range data {
		fields = append(fields, zap.String(k, v))
	}
	n.logger.Info("notification dispatched", fields...)
}

// Ensure LogNotifier implements Notifier
var _ shared.Notifier = (*LogNotifier)(nil)
