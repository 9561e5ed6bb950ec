package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/shared/valueobject"
	"github.com/farmeet/backend/internal/infrastructure/config"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/refund"
	"go.uber.org/zap"
)

// StripeAdapter implements billing.PaymentGateway for card payments using
// Stripe Checkout Sessions. JPY is a zero-decimal currency in Stripe, so
// amounts are sent as whole yen.
type StripeAdapter struct {
	config     config.StripeConfig
	successURL string
	cancelURL  string
	logger     *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(cfg config.StripeConfig, successURL, cancelURL string, logger *zap.Logger) (*StripeAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("stripe: api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stripe.Key = cfg.APIKey

	return &StripeAdapter{
		config:     cfg,
		successURL: successURL,
		cancelURL:  cancelURL,
		logger:     logger,
	}, nil
}

// CreateCheckout initiates a Stripe Checkout Session for the charge
func (a *StripeAdapter) CreateCheckout(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(a.successURL),
		CancelURL:  stripe.String(a.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(string(req.Amount.Currency()))),
					UnitAmount: stripe.Int64(req.Amount.Amount().IntPart()),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	if len(req.Metadata) > 0 {
		params.Metadata = req.Metadata
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: req.Metadata,
		}
	}

	s, err := session.New(params)
	if err != nil {
		a.logger.Error("stripe checkout session creation failed", zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	a.logger.Info("created stripe checkout session",
		zap.String("session_id", s.ID))

	return &billing.CheckoutSession{
		SessionID:   s.ID,
		RedirectURL: s.URL,
	}, nil
}

// ConfirmCheckout fetches the settled state of a checkout session
func (a *StripeAdapter) ConfirmCheckout(ctx context.Context, sessionID string) (*billing.CheckoutStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	s, err := session.Get(sessionID, params)
	if err != nil {
		a.logger.Error("stripe checkout session lookup failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to get checkout session: %w", err)
	}

	status := &billing.CheckoutStatus{
		Paid: s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if s.PaymentIntent != nil {
		status.ExternalChargeID = s.PaymentIntent.ID
	}
	return status, nil
}

// Refund returns part or all of a settled charge to the payer
func (a *StripeAdapter) Refund(ctx context.Context, externalChargeID string, amount valueobject.Money) error {
	if externalChargeID == "" {
		return fmt.Errorf("stripe: external charge ID is required for refund")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(externalChargeID),
		Amount:        stripe.Int64(amount.Amount().IntPart()),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		a.logger.Error("stripe refund failed",
			zap.String("payment_intent", externalChargeID),
			zap.Error(err))
		return fmt.Errorf("stripe: failed to create refund: %w", err)
	}

	a.logger.Info("created stripe refund",
		zap.String("refund_id", r.ID),
		zap.String("payment_intent", externalChargeID))
	return nil
}

// Ensure StripeAdapter implements PaymentGateway
var _ billing.PaymentGateway = (*StripeAdapter)(nil)
