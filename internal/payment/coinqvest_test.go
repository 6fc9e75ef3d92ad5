package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/coinqvest"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMerchant struct {
	customer    *coinqvest.Customer
	checkout    *coinqvest.HostedCheckout
	customerErr error
	checkoutErr error
}

func (f *fakeMerchant) CreateCustomer(ctx context.Context, customer *coinqvest.Customer) (string, error) {
	f.customer = customer
	if f.customerErr != nil {
		return "", f.customerErr
	}
	return "CUST-1", nil
}

func (f *fakeMerchant) CreateHostedCheckout(ctx context.Context, checkout *coinqvest.HostedCheckout) (*coinqvest.HostedCheckoutResult, error) {
	f.checkout = checkout
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return &coinqvest.HostedCheckoutResult{ID: "CHK-1", URL: "https://www.coinqvest.com/en/checkout/CHK-1"}, nil
}

func (f *fakeMerchant) GetCheckout(ctx context.Context, checkoutID string) (*coinqvest.Checkout, error) {
	return &coinqvest.Checkout{ID: checkoutID, State: coinqvest.CheckoutStateOpen}, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testOrder() (*store.Order, store.OrderItems) {
	order := &store.Order{
		ID:       "01HZX0000000000000000000AB",
		Currency: "USD",
		Status:   store.PendingOrderStatus,
		Billing: store.BillingAddress{
			Email:     " Ada@Example.com ",
			FirstName: "<b>Ada</b>",
			LastName:  "Lovelace\n",
			Address1:  "12  St James's Square",
			Postcode:  "SW1Y 4JH",
			City:      "London",
			Country:   "GB",
			Phone:     "+44 20 7946 0000",
		},
	}

	items := store.OrderItems{
		{Type: store.LineOrderItem, Name: "Hoodie", ProductID: "42", Quantity: 3, Subtotal: dec("10")},
		{Type: store.LineOrderItem, Name: "Cap", ProductID: "7", Quantity: 1, Subtotal: dec("19.99")},
		{Type: store.TaxOrderItem, Name: "VAT", RatePercent: dec("19")},
	}

	return order, items
}

func testConfig() CoinqvestConfig {
	return CoinqvestConfig{
		APIKey:             "abcdefghijkl",
		APISecret:          "0123456789abcdefghijklmnopqrs",
		SettlementCurrency: "EUR",
		CheckoutLanguage:   "0",
		WebhookURL:         "https://pay.example/v1/webhooks/coinqvest",
		StoreURL:           "http://shop.example/",
		ForceSSLCheckout:   true,
	}
}

func TestInitiatePaymentBuildsPayload(t *testing.T) {
	merchant := &fakeMerchant{}
	p := NewCoinqvestPayment(merchant, testConfig())
	order, items := testOrder()

	checkout, err := p.InitiatePayment(context.Background(), order, items)
	require.NoError(t, err)

	assert.Equal(t, "CHK-1", checkout.ID)
	assert.Equal(t, "https://www.coinqvest.com/en/checkout/CHK-1", checkout.URL)

	require.NotNil(t, merchant.customer)
	assert.Equal(t, "Ada@example.com", merchant.customer.Email)
	assert.Equal(t, "Ada", merchant.customer.FirstName)
	assert.Equal(t, "Lovelace", merchant.customer.LastName)
	assert.Equal(t, "12 St James's Square", merchant.customer.Adr1)
	assert.Equal(t, map[string]string{"source": "Woocommerce"}, merchant.customer.Meta)

	c := merchant.checkout
	require.NotNil(t, c)
	assert.Equal(t, "CUST-1", c.Charge.CustomerID)
	assert.Equal(t, "USD", c.Charge.Currency)
	assert.Equal(t, "EUR", c.SettlementCurrency)
	assert.Empty(t, c.CheckoutLanguage)
	assert.Equal(t, "https://pay.example/v1/webhooks/coinqvest", c.Webhook)
	assert.Equal(t, "http://shop.example/checkout/order-received/01HZX0000000000000000000AB/", c.Links.ReturnURL)
	assert.Equal(t, "https://shop.example/cart/?cancel_order=true&order_id=01HZX0000000000000000000AB", c.Links.CancelURL)

	require.Len(t, c.Charge.LineItems, 2)
	assert.Equal(t, "3.33333333", c.Charge.LineItems[0].NetAmount.String())
	assert.Equal(t, 3, c.Charge.LineItems[0].Quantity)
	assert.Equal(t, "42", c.Charge.LineItems[0].ProductID)
	assert.Equal(t, "19.99", c.Charge.LineItems[1].NetAmount.String())

	assert.Nil(t, c.Charge.DiscountItems)
	assert.Nil(t, c.Charge.ShippingCostItems)
	require.Len(t, c.Charge.TaxItems, 1)
	assert.Equal(t, "0.19", c.Charge.TaxItems[0].Percent.String())
}

func TestInitiatePaymentDiscountsAndShipping(t *testing.T) {
	merchant := &fakeMerchant{}
	p := NewCoinqvestPayment(merchant, testConfig())
	order, _ := testOrder()
	order.ReturnURL = "https://shop.example/thanks"
	order.CancelURL = "http://shop.example/cancel?next=http://shop.example/"

	items := store.OrderItems{
		{Type: store.LineOrderItem, Name: "Hoodie", Quantity: 1, Subtotal: dec("50")},
		{Type: store.CouponOrderItem, Name: "SAVE10", Total: dec("5")},
		{Type: store.ShippingOrderItem, Name: "Flat rate", Total: dec("4.95"), TotalTax: dec("0.94")},
		{Type: store.ShippingOrderItem, Name: "Pickup", Total: dec("0"), TotalTax: dec("0")},
	}

	_, err := p.InitiatePayment(context.Background(), order, items)
	require.NoError(t, err)

	c := merchant.checkout
	assert.Equal(t, "https://shop.example/thanks", c.Links.ReturnURL)
	assert.Equal(t, "https://shop.example/cancel?next=http://shop.example/", c.Links.CancelURL)

	require.Len(t, c.Charge.DiscountItems, 1)
	assert.Equal(t, "SAVE10", c.Charge.DiscountItems[0].Description)
	assert.Equal(t, "5", c.Charge.DiscountItems[0].NetAmount.String())

	require.Len(t, c.Charge.ShippingCostItems, 2)
	assert.True(t, c.Charge.ShippingCostItems[0].Taxable)
	assert.False(t, c.Charge.ShippingCostItems[1].Taxable)
	assert.Nil(t, c.Charge.TaxItems)
}

func TestInitiatePaymentCustomerFailure(t *testing.T) {
	merchant := &fakeMerchant{customerErr: &coinqvest.APIError{Endpoint: "/customer", StatusCode: 400, Body: `{"errors":["email"]}`}}
	p := NewCoinqvestPayment(merchant, testConfig())
	order, items := testOrder()

	_, err := p.InitiatePayment(context.Background(), order, items)
	require.Error(t, err)

	var procErr *ProcessorError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, `Failed to create customer. {"errors":["email"]}`, procErr.Message)
	assert.Nil(t, merchant.checkout)
}

func TestInitiatePaymentCheckoutFailure(t *testing.T) {
	merchant := &fakeMerchant{checkoutErr: errors.New("connection reset")}
	p := NewCoinqvestPayment(merchant, testConfig())
	order, items := testOrder()

	_, err := p.InitiatePayment(context.Background(), order, items)

	var procErr *ProcessorError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "Failed to create checkout. connection reset", procErr.Message)
}

func TestNewPaymentAgainstServer(t *testing.T) {
	var paths []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		body, _ := io.ReadAll(r.Body)

		switch r.URL.Path {
		case "/customer":
			var req map[string]map[string]any
			require.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, "ada@example.com", req["customer"]["email"])
			_, _ = w.Write([]byte(`{"customerId":"CUST-9"}`))
		case "/checkout/hosted":
			var req map[string]any
			require.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, "CUST-9", req["charge"].(map[string]any)["customerId"])
			_, _ = w.Write([]byte(`{"id":"CHK-9","url":"https://www.coinqvest.com/en/checkout/CHK-9"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.BaseURL = srv.URL

	p, err := NewPayment(MethodCoinqvest, &Config{Coinqvest: cfg}, zap.NewNop().Sugar())
	require.NoError(t, err)

	order, items := testOrder()
	order.Billing.Email = "ada@example.com"

	checkout, err := p.InitiatePayment(context.Background(), order, items)
	require.NoError(t, err)

	assert.Equal(t, "CHK-9", checkout.ID)
	assert.Equal(t, []string{"/customer", "/checkout/hosted"}, paths)
}

func TestNewPaymentAppliesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 50 * time.Millisecond

	p, err := NewPayment(MethodCoinqvest, &Config{Coinqvest: cfg}, zap.NewNop().Sugar())
	require.NoError(t, err)

	start := time.Now()
	_, err = p.LookupCheckout(context.Background(), "CHK-1")

	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewPaymentUnknownMethod(t *testing.T) {
	_, err := NewPayment("stripe", &Config{}, zap.NewNop().Sugar())
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
}

func TestLookupCheckout(t *testing.T) {
	p := NewCoinqvestPayment(&fakeMerchant{}, testConfig())

	checkout, err := p.LookupCheckout(context.Background(), "CHK-3")
	require.NoError(t, err)
	assert.Equal(t, "CHK-3", checkout.ID)
}
