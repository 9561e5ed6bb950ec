package billing

import (
	"context"

	"github.com/farmeet/backend/internal/domain/shared/valueobject"
)

// CheckoutRequest describes a charge to be collected by an external gateway
type CheckoutRequest struct {
	Amount      valueobject.Money
	Description string
	// Metadata is echoed back on callbacks; carries payment and reservation IDs
	Metadata map[string]string
}

// CheckoutSession is the gateway's handle for an initiated charge
type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// CheckoutStatus is the gateway's view of a session after confirmation
type CheckoutStatus struct {
	Paid             bool
	ExternalChargeID string
}

// PaymentGateway is the port to an external payment provider. Calls may
// block on the network and must honor context deadlines; any transport or
// provider error surfaces as shared.ErrGatewayFailure so callers can treat
// it as retryable.
type PaymentGateway interface {
	// CreateCheckout initiates a charge and returns the session handle
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// ConfirmCheckout fetches the settled state of a checkout session
	ConfirmCheckout(ctx context.Context, sessionID string) (*CheckoutStatus, error)

	// Refund returns part or all of a settled charge to the payer
	Refund(ctx context.Context, externalChargeID string, amount valueobject.Money) error
}
