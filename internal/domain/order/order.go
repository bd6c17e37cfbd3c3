package order

import "context"

// OutOfStockMessage is the storefront response when a basket cannot be
// fulfilled. It is also returned when the mail channel is unreachable; the
// storefront contract conflates the two and clients depend on the exact text.
const OutOfStockMessage = "These goods are out of stock. Please place another order."

// MailSentStatus is the status text the mail sender reports on successful
// delivery. Any other status is a soft failure: the mail channel answered
// but did not deliver.
const MailSentStatus = "Email sent successfully"

// Mailer delivers an order confirmation to a recipient address. It returns
// the sender's status text. An error is returned only when the channel
// itself cannot be reached.
type Mailer interface {
	Send(ctx context.Context, recipientName, recipientAddress string, includeDetails bool, subject, content string) (string, error)
}

// Producer publishes a lightweight order event to the downstream
// notification pipeline.
type Producer interface {
	Dispatch(ctx context.Context, message string) error
}

// Outcome records what the notification channels reported for a placed
// order. The secondary channel is fire-and-forget, so only its dispatch is
// recorded, not its delivery.
type Outcome struct {
	PrimaryStatus       string
	SecondaryDispatched bool
}
