package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/grocery-orders/internal/domain/catalog"
	"github.com/xenking/grocery-orders/internal/domain/offer"
	"github.com/xenking/grocery-orders/internal/domain/pricing"
)

// --- Mock implementations ---

type mockMailer struct {
	status string
	err    error

	calls       int
	lastName    string
	lastAddress string
}

func (m *mockMailer) Send(_ context.Context, name, address string, _ bool, _, _ string) (string, error) {
	m.calls++
	m.lastName = name
	m.lastAddress = address
	if m.err != nil {
		return "", m.err
	}
	return m.status, nil
}

type mockProducer struct {
	err        error
	doPanic    bool
	dispatched chan string
}

func (m *mockProducer) Dispatch(_ context.Context, message string) error {
	if m.dispatched != nil {
		m.dispatched <- message
	}
	if m.doPanic {
		panic("broker gone")
	}
	return m.err
}

// --- Helpers ---

func newTestService(mailer Mailer, producer Producer) *Service {
	snapshot := catalog.New([]catalog.Item{
		{ID: "apple", Name: "Apple", Price: decimal.RequireFromString("0.6"), Stock: 5},
		{ID: "orange", Name: "Orange", Price: decimal.RequireFromString("0.25"), Stock: 10},
	})
	rules := offer.NewRules([]offer.Rule{
		{ItemID: "apple", GroupSize: 2, FreeCount: 1},
		{ItemID: "orange", GroupSize: 3, FreeCount: 1},
	})
	return NewService(snapshot, pricing.NewEngine(snapshot, rules), mailer, producer, zap.NewNop())
}

func placeRequest() PlaceRequest {
	return PlaceRequest{
		UserID:      "USER_ID",
		MailAddress: "my.address@gmail.com",
		Basket:      []string{"orange", "apple", "apple", "orange", "orange", "cucumber"},
	}
}

func waitDispatched(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("order event was not dispatched")
		return ""
	}
}

const wantConfirmation = "Dear USER_ID! You placed order that contains [{orange=3, apple=2}] and costs $1.1. We sent you details to my.address@gmail.com"

// --- Tests ---

func TestPlace(t *testing.T) {
	mailer := &mockMailer{status: MailSentStatus}
	producer := &mockProducer{dispatched: make(chan string, 1)}
	svc := newTestService(mailer, producer)

	result, err := svc.Place(context.Background(), placeRequest())
	require.NoError(t, err)

	assert.Equal(t, wantConfirmation, result.Message)
	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, "USER_ID", mailer.lastName)
	assert.Equal(t, "my.address@gmail.com", mailer.lastAddress)
	assert.Equal(t, MailSentStatus, result.Outcome.PrimaryStatus)
	assert.True(t, decimal.RequireFromString("1.1").Equal(result.Pricing.Total))

	assert.NotEmpty(t, waitDispatched(t, producer.dispatched))
}

func TestPlaceSoftMailFailure(t *testing.T) {
	mailer := &mockMailer{status: "Email wasn't sent"}
	producer := &mockProducer{dispatched: make(chan string, 1)}
	svc := newTestService(mailer, producer)

	result, err := svc.Place(context.Background(), placeRequest())
	require.NoError(t, err)

	// A soft failure keeps the regular confirmation text.
	assert.Equal(t, wantConfirmation, result.Message)
	waitDispatched(t, producer.dispatched)
}

func TestPlaceMailUnreachable(t *testing.T) {
	mailer := &mockMailer{err: errors.New("dial tcp: connection refused")}
	producer := &mockProducer{}
	svc := newTestService(mailer, producer)

	result, err := svc.Place(context.Background(), placeRequest())
	require.NoError(t, err)

	assert.Equal(t, OutOfStockMessage, result.Message)
	assert.Equal(t, 1, mailer.calls)
}

func TestPlaceOutOfStock(t *testing.T) {
	mailer := &mockMailer{status: MailSentStatus}
	producer := &mockProducer{}
	svc := newTestService(mailer, producer)

	req := placeRequest()
	req.Basket = append(req.Basket,
		"apple", "apple", "apple", "apple", "apple", "apple", "apple", "apple")

	result, err := svc.Place(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, OutOfStockMessage, result.Message)
	// The workflow short-circuits: no notification is attempted.
	assert.Equal(t, 0, mailer.calls)
}

func TestPlaceProducerFailureIgnored(t *testing.T) {
	mailer := &mockMailer{status: MailSentStatus}
	producer := &mockProducer{err: errors.New("broker unavailable"), dispatched: make(chan string, 1)}
	svc := newTestService(mailer, producer)

	result, err := svc.Place(context.Background(), placeRequest())
	require.NoError(t, err)

	assert.Equal(t, wantConfirmation, result.Message)
	waitDispatched(t, producer.dispatched)
}

func TestPlaceProducerPanicIgnored(t *testing.T) {
	mailer := &mockMailer{status: MailSentStatus}
	producer := &mockProducer{doPanic: true, dispatched: make(chan string, 1)}
	svc := newTestService(mailer, producer)

	result, err := svc.Place(context.Background(), placeRequest())
	require.NoError(t, err)

	assert.Equal(t, wantConfirmation, result.Message)
	waitDispatched(t, producer.dispatched)
}

func TestPlaceUnknownItemDoesNotBlockOrder(t *testing.T) {
	mailer := &mockMailer{status: MailSentStatus}
	producer := &mockProducer{dispatched: make(chan string, 1)}
	svc := newTestService(mailer, producer)

	req := placeRequest()
	req.Basket = []string{"cucumber", "orange"}

	result, err := svc.Place(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t,
		"Dear USER_ID! You placed order that contains [{orange=1}] and costs $0.25. We sent you details to my.address@gmail.com",
		result.Message)
}
