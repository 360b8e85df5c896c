package payment

import "context"

// DepositRequest describes a booking deposit to collect.
type DepositRequest struct {
	AppointmentID string
	ClientID      string
	AmountCents   int64
	Description   string
}

// DepositCharger collects booking deposits through a payment provider.
// The returned reference identifies the charge on the provider's side.
type DepositCharger interface {
	ChargeDeposit(ctx context.Context, req DepositRequest) (string, error)
	ProviderID() string
}

type NoopCharger struct{}

func NewNoopCharger() *NoopCharger {
	return &NoopCharger{}
}

func (c *NoopCharger) ProviderID() string {
	return "noop"
}

func (c *NoopCharger) ChargeDeposit(_ context.Context, _ DepositRequest) (string, error) {
	return "", nil
}
