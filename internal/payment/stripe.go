package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// StripeCharger collects deposits as Stripe payment intents. It is the only
// place in the codebase that touches the Stripe SDK; everything else sees
// the DepositCharger interface.
type StripeCharger struct {
	secretKey string
	currency  string
}

func NewStripeCharger(secretKey, currency string) *StripeCharger {
	currency = strings.TrimSpace(strings.ToLower(currency))
	if currency == "" {
		currency = "usd"
	}
	return &StripeCharger{
		secretKey: strings.TrimSpace(secretKey),
		currency:  currency,
	}
}

func (c *StripeCharger) ProviderID() string {
	return "stripe"
}

func (c *StripeCharger) ChargeDeposit(_ context.Context, req DepositRequest) (string, error) {
	if c.secretKey == "" {
		return "", errors.New("stripe secret key not configured")
	}
	if req.AmountCents <= 0 {
		return "", fmt.Errorf("invalid deposit amount: %d", req.AmountCents)
	}

	stripe.Key = c.secretKey

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(c.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(req.Description),
		Metadata: map[string]string{
			"appointment_id": req.AppointmentID,
			"client_id":      req.ClientID,
		},
	}
	// Stripe-level idempotency: a retried booking never double-charges.
	params.IdempotencyKey = stripe.String("deposit-" + req.AppointmentID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}

	return pi.ID, nil
}
