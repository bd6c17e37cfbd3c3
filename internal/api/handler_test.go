package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/grocery-orders/internal/domain/catalog"
	"github.com/xenking/grocery-orders/internal/domain/offer"
	"github.com/xenking/grocery-orders/internal/domain/order"
	"github.com/xenking/grocery-orders/internal/domain/pricing"
)

// --- Mock implementations ---

type mockMailer struct {
	status string
	err    error
	calls  int
}

func (m *mockMailer) Send(_ context.Context, _, _ string, _ bool, _, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.status, nil
}

type mockProducer struct {
	err error
}

func (m *mockProducer) Dispatch(context.Context, string) error {
	return m.err
}

// --- Helpers ---

func newTestMux(mailer order.Mailer, producer order.Producer) *http.ServeMux {
	snapshot := catalog.New([]catalog.Item{
		{ID: "apple", Name: "Apple", Price: decimal.RequireFromString("0.6"), Stock: 5},
		{ID: "orange", Name: "Orange", Price: decimal.RequireFromString("0.25"), Stock: 10},
	})
	rules := offer.NewRules([]offer.Rule{
		{ItemID: "apple", GroupSize: 2, FreeCount: 1},
		{ItemID: "orange", GroupSize: 3, FreeCount: 1},
	})
	engine := pricing.NewEngine(snapshot, rules)
	svc := order.NewService(snapshot, engine, mailer, producer, zap.NewNop())

	mux := http.NewServeMux()
	NewHandler(engine, svc).Routes(mux)
	return mux
}

func doRequest(mux *http.ServeMux, method, target, body string, withIdentity bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if withIdentity {
		req.Header.Set(HeaderUserID, "USER_ID")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestCalculations(t *testing.T) {
	mux := newTestMux(&mockMailer{status: order.MailSentStatus}, &mockProducer{})

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "plain basket",
			body: `["orange", "apple", "apple", "apple"]`,
			want: `{"totalCost":"$1.45"}`,
		},
		{
			name: "offers applied",
			body: `["orange", "apple", "apple", "orange", "orange"]`,
			want: `{"totalCost":"$1.1"}`,
		},
		{
			name: "unknown item ignored",
			body: `["orange", "apple", "apple", "orange", "orange", "cucumber"]`,
			want: `{"totalCost":"$1.1"}`,
		},
		{
			name: "empty basket",
			body: `[]`,
			want: `{"totalCost":"$0.0"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(mux, http.MethodGet, "/orders/calculations", tt.body, true)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestCalculationsMissingIdentity(t *testing.T) {
	mux := newTestMux(&mockMailer{}, &mockProducer{})

	rec := doRequest(mux, http.MethodGet, "/orders/calculations", `[]`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculationsBadBody(t *testing.T) {
	mux := newTestMux(&mockMailer{}, &mockProducer{})

	for _, body := range []string{"", "   ", `{"not":"an array"}`, `[1, 2]`, `["orange"`} {
		rec := doRequest(mux, http.MethodGet, "/orders/calculations", body, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestPlaceOrder(t *testing.T) {
	mux := newTestMux(&mockMailer{status: order.MailSentStatus}, &mockProducer{})

	rec := doRequest(mux, http.MethodPost, "/orders?mailAddress=my.address@gmail.com",
		`["orange", "apple", "apple", "orange", "orange", "cucumber"]`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"Dear USER_ID! You placed order that contains [{orange=3, apple=2}] and costs $1.1. We sent you details to my.address@gmail.com",
		rec.Body.String())
}

func TestPlaceOrderSoftMailFailure(t *testing.T) {
	mux := newTestMux(&mockMailer{status: "Email wasn't sent"}, &mockProducer{})

	rec := doRequest(mux, http.MethodPost, "/orders?mailAddress=my.address@gmail.com",
		`["orange", "apple", "apple", "orange", "orange", "cucumber"]`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"Dear USER_ID! You placed order that contains [{orange=3, apple=2}] and costs $1.1. We sent you details to my.address@gmail.com",
		rec.Body.String())
}

func TestPlaceOrderMailUnreachable(t *testing.T) {
	mux := newTestMux(&mockMailer{err: errors.New("connection refused")}, &mockProducer{})

	rec := doRequest(mux, http.MethodPost, "/orders?mailAddress=my.address@gmail.com",
		`["orange", "apple", "apple", "orange", "orange", "cucumber"]`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.OutOfStockMessage, rec.Body.String())
}

func TestPlaceOrderOutOfStock(t *testing.T) {
	mailer := &mockMailer{status: order.MailSentStatus}
	mux := newTestMux(mailer, &mockProducer{})

	rec := doRequest(mux, http.MethodPost, "/orders?mailAddress=my.address@gmail.com",
		`["orange", "apple", "apple", "orange", "orange", "cucumber", "apple", "apple", "apple", "apple", "apple", "apple", "apple", "apple"]`,
		true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.OutOfStockMessage, rec.Body.String())
	assert.Equal(t, 0, mailer.calls)
}

func TestPlaceOrderMissingMailAddress(t *testing.T) {
	mux := newTestMux(&mockMailer{}, &mockProducer{})

	rec := doRequest(mux, http.MethodPost, "/orders", `["orange"]`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderMissingIdentity(t *testing.T) {
	mux := newTestMux(&mockMailer{}, &mockProducer{})

	rec := doRequest(mux, http.MethodPost, "/orders?mailAddress=a@example.com", `["orange"]`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
