package notify

import "context"

// Message is a channel-agnostic notification. Senders pick whichever
// destination field they understand and ignore the rest.
type Message struct {
	Email   string
	Phone   string
	Subject string
	Body    string
}

// Notifier delivers client-facing notifications. Implementations must be
// safe for concurrent use; delivery failures are the caller's to log, a
// booking never fails because a notification could not be sent.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
	ProviderID() string
}

type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) ProviderID() string {
	return "noop"
}

func (n *NoopNotifier) Send(_ context.Context, _ Message) error {
	return nil
}
