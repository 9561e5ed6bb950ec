package shared

import (
	"context"

	"github.com/google/uuid"
)

// Notification templates sent by the reservation lifecycle.
const (
	TemplateReservationConfirmed   = "reservation_confirmed"
	TemplateReservationCancelled   = "reservation_cancelled"
	TemplateReservationAutoExpired = "reservation_auto_expired"
	TemplatePaymentRefunded        = "payment_refunded"
)

// Notifier delivers fire-and-forget notifications to users.
// Delivery failures must never block or fail the calling operation;
// implementations log and move on.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, template string, data map[string]string)
}
