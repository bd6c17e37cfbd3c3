// Package notify implements the two customer notification transports: the
// synchronous HTTP mail sender and the Kafka order event producer.
package notify

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/grocery-orders/internal/domain/order"
)

var _ order.Mailer = (*MailClient)(nil)

// ErrUnreachable indicates the mail sender service could not be reached at
// the transport level. Callers distinguish it from a soft delivery failure,
// which is reported through the returned status text instead.
var ErrUnreachable = errors.New("mail sender unreachable")

// defaultSoftFailureStatus is reported when the sender answers without a
// status body.
const defaultSoftFailureStatus = "Email wasn't sent"

// MailClient sends order confirmations through the mail sender service.
type MailClient struct {
	baseURL string
	client  *http.Client
}

// NewMailClient creates a MailClient for the sender service at baseURL.
func NewMailClient(baseURL string) *MailClient {
	return &MailClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Send posts the message to the sender service and returns its status text.
// Transport-level failures are wrapped in ErrUnreachable; any HTTP response,
// success or not, is returned as a status.
func (c *MailClient) Send(ctx context.Context, recipientName, recipientAddress string, includeDetails bool, subject, content string) (string, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("recipientName")
	e.Str(recipientName)
	e.FieldStart("recipientAddress")
	e.Str(recipientAddress)
	e.FieldStart("includeDetails")
	e.Bool(includeDetails)
	e.FieldStart("subject")
	e.Str(subject)
	e.FieldStart("content")
	e.Str(content)
	e.ObjEnd()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mail/send", bytes.NewReader(e.Bytes()))
	if err != nil {
		return "", errors.Wrap(err, "build mail request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(ErrUnreachable, "post %s: %v", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err != nil {
		return "", errors.Wrap(err, "read mail sender response")
	}

	status := strings.TrimSpace(string(body))
	if status == "" {
		status = defaultSoftFailureStatus
	}
	return status, nil
}
