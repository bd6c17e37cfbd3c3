package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailClientSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/mail/send", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		io.WriteString(w, "Email sent successfully")
	}))
	defer srv.Close()

	c := NewMailClient(srv.URL)
	status, err := c.Send(context.Background(), "USER_ID", "my.address@gmail.com", true, "Your grocery order", "details")

	require.NoError(t, err)
	assert.Equal(t, "Email sent successfully", status)
	assert.Equal(t, "USER_ID", got["recipientName"])
	assert.Equal(t, "my.address@gmail.com", got["recipientAddress"])
	assert.Equal(t, true, got["includeDetails"])
	assert.Equal(t, "Your grocery order", got["subject"])
}

func TestMailClientSoftFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "Email wasn't sent")
	}))
	defer srv.Close()

	c := NewMailClient(srv.URL)
	status, err := c.Send(context.Background(), "u", "a@example.com", false, "s", "c")

	require.NoError(t, err)
	assert.Equal(t, "Email wasn't sent", status)
}

func TestMailClientEmptyStatusBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewMailClient(srv.URL)
	status, err := c.Send(context.Background(), "u", "a@example.com", false, "s", "c")

	require.NoError(t, err)
	assert.Equal(t, "Email wasn't sent", status)
}

func TestMailClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewMailClient(srv.URL)
	_, err := c.Send(context.Background(), "u", "a@example.com", false, "s", "c")

	require.ErrorIs(t, err, ErrUnreachable)
}
