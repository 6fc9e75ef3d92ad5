package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/auth"
	"github.com/devphaseX/cqpay-api.git/internal/coinqvest"
	"github.com/devphaseX/cqpay-api.git/internal/gateway"
	"github.com/devphaseX/cqpay-api.git/internal/payment"
	"github.com/devphaseX/cqpay-api.git/internal/ratelimiter"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/devphaseX/cqpay-api.git/internal/store/cache/cachetest"
	"github.com/devphaseX/cqpay-api.git/internal/store/storetest"
	"github.com/devphaseX/cqpay-api.git/worker"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAPIKey      = "abcdefghijkl"
	testAPISecret   = "0123456789abcdefghijklmnopqrs"
	testTokenSecret = "test-admin-token-secret"
)

type fakePayment struct {
	checkout *payment.Checkout
	err      error
	orders   []*store.Order
}

func (p *fakePayment) InitiatePayment(ctx context.Context, order *store.Order, items store.OrderItems) (*payment.Checkout, error) {
	p.orders = append(p.orders, order)
	if p.err != nil {
		return nil, p.err
	}
	return p.checkout, nil
}

func (p *fakePayment) LookupCheckout(ctx context.Context, checkoutID string) (*coinqvest.Checkout, error) {
	return &coinqvest.Checkout{ID: checkoutID, State: coinqvest.CheckoutStateOpen}, nil
}

type fakeDistributor struct {
	events []*worker.PayloadProcessCheckoutEvent
	err    error
}

func (d *fakeDistributor) DistributeTaskProcessCheckoutEvent(ctx context.Context, payload *worker.PayloadProcessCheckoutEvent, opts ...asynq.Option) error {
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, payload)
	return nil
}

func (d *fakeDistributor) DistributeTaskSendPaymentEmail(ctx context.Context, payload *worker.PayloadSendPaymentEmail, opts ...asynq.Option) error {
	return nil
}

type testApp struct {
	*application
	orders      *storetest.Orders
	payments    *storetest.Payments
	checkouts   *cachetest.Checkouts
	payment     *fakePayment
	distributor *fakeDistributor
	handler     http.Handler
}

func newTestApp(t *testing.T, mutate ...func(*config)) *testApp {
	t.Helper()

	cfg := config{
		env:    "test",
		apiURL: "https://pay.example",
		gateway: gateway.Settings{
			Enabled:   true,
			Title:     "Crypto",
			APIKey:    testAPIKey,
			APISecret: testAPISecret,
			ShowIcons: true,
		},
		assetsURL: "https://cdn.example",
		cors:      corsConfig{trustedOrigins: []string{"https://shop.example"}},
	}

	for _, fn := range mutate {
		fn(&cfg)
	}

	storage, orders, payments := storetest.NewStorage()
	cacheStorage, checkouts, _ := cachetest.NewStorage()

	authToken, err := auth.NewJWTToken(testTokenSecret)
	require.NoError(t, err)

	pay := &fakePayment{checkout: &payment.Checkout{ID: "CHK-1", URL: "https://www.coinqvest.com/en/checkout/CHK-1"}}
	distributor := &fakeDistributor{}

	app := &application{
		cfg:             cfg,
		logger:          zap.NewNop().Sugar(),
		store:           storage,
		cacheStore:      cacheStorage,
		authToken:       authToken,
		payment:         pay,
		gateway:         gateway.New(cfg.gateway, cfg.assetsURL),
		taskDistributor: distributor,
	}
	app.rateLimitService = app.newRateLimitService(ratelimiter.NewMemoryStore())

	return &testApp{
		application: app,
		orders:      orders,
		payments:    payments,
		checkouts:   checkouts,
		payment:     pay,
		distributor: distributor,
		handler:     app.routes(),
	}
}

func (ta *testApp) do(t *testing.T, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.RemoteAddr = "203.0.113.9:4000"
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)

	return rr
}

func (ta *testApp) adminHeaders(t *testing.T) map[string]string {
	t.Helper()

	token, err := ta.authToken.GenerateAdminToken("storefront", time.Hour)
	require.NoError(t, err)

	return map[string]string{"Authorization": "Bearer " + token}
}

func (ta *testApp) putOrder(id string, status store.OrderStatus) *store.Order {
	order := &store.Order{
		ID:          id,
		Reference:   "WC-" + id,
		Currency:    "USD",
		TotalAmount: decimal.RequireFromString("30"),
		Status:      status,
		Billing:     store.BillingAddress{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"},
	}

	ta.orders.Put(order, store.OrderItems{
		{OrderID: id, Type: store.LineOrderItem, Name: "Hoodie", Quantity: 1, Subtotal: decimal.RequireFromString("30")},
	})

	return order
}

type responseEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  struct {
		Message json.RawMessage `json:"message"`
		Code    string          `json:"code"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()

	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())

	return env
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var message string
	env := decodeEnvelope(t, rr)
	require.NoError(t, json.Unmarshal(env.Error.Message, &message))

	return message
}

func TestHealthcheck(t *testing.T) {
	ta := newTestApp(t)

	rr := ta.do(t, http.MethodGet, "/v1/healthcheck", nil, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", decodeEnvelope(t, rr).Status)
}

func TestDescribeGateway(t *testing.T) {
	ta := newTestApp(t)

	rr := ta.do(t, http.MethodGet, "/v1/gateway", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var data struct {
		Gateway gateway.Description `json:"gateway"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &data))

	assert.Equal(t, "coinqvest", data.Gateway.ID)
	assert.Equal(t, "Proceed to COINQVEST", data.Gateway.OrderButtonText)
	assert.Equal(t, "https://cdn.example/assets/images/cq-logo.png", data.Gateway.Icon)
	assert.True(t, data.Gateway.Enabled)
}

func TestUnknownRoute(t *testing.T) {
	ta := newTestApp(t)

	rr := ta.do(t, http.MethodGet, "/v1/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decodeEnvelope(t, rr).Error.Code)
}
