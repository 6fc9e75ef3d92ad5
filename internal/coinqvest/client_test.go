package coinqvest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey    = "cq1234567890"
	testAPISecret = "secret-abcdefghijklmnopqrstuv"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *MerchantClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewMerchantClient(testAPIKey, testAPISecret, WithBaseURL(srv.URL+"/"))
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	return c
}

func expectedSignature(path, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(testAPISecret))
	mac.Write([]byte(path + timestamp))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPostSignsRequest(t *testing.T) {
	var gotBody []byte

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/customer", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, testAPIKey, r.Header.Get("X-Digest-Key"))
		assert.Equal(t, "1700000000", r.Header.Get("X-Digest-Timestamp"))
		assert.Equal(t, expectedSignature("/customer", "1700000000", gotBody), r.Header.Get("X-Digest-Signature"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"customerId":"C-1"}`))
	})

	res, err := c.Post(context.Background(), "/customer", map[string]string{"a": "b"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.HTTPStatusCode)
	assert.JSONEq(t, `{"customerId":"C-1"}`, string(res.ResponseBody))
	assert.JSONEq(t, `{"a":"b"}`, string(gotBody))
}

func TestGetSignsPathWithQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "CHK-1", r.URL.Query().Get("id"))
		assert.Equal(t, expectedSignature("/checkout?id=CHK-1", "1700000000", nil), r.Header.Get("X-Digest-Signature"))
		assert.Empty(t, r.Header.Get("Content-Type"))

		_, _ = w.Write([]byte(`{"checkout":{"id":"CHK-1","state":"COMPLETED","paymentId":"P-9","settlementAmountReceived":12.5}}`))
	})

	checkout, err := c.GetCheckout(context.Background(), "CHK-1")
	require.NoError(t, err)

	assert.Equal(t, "CHK-1", checkout.ID)
	assert.Equal(t, CheckoutStateCompleted, checkout.State)
	assert.True(t, checkout.State.Paid())
	assert.Equal(t, "P-9", checkout.PaymentID)
	require.NotNil(t, checkout.SettlementAmountReceived)
	assert.True(t, decimal.RequireFromString("12.5").Equal(checkout.SettlementAmountReceived.Decimal))
}

func TestNonOKStatusIsNotATransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":["invalid email"]}`))
	})

	res, err := c.Post(context.Background(), "/customer", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.HTTPStatusCode)

	_, err = c.CreateCustomer(context.Background(), &Customer{Email: "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "/customer", apiErr.Endpoint)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, `{"errors":["invalid email"]}`, apiErr.Body)
}

func TestCreateHostedCheckout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/hosted", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		charge := payload["charge"].(map[string]any)
		assert.Equal(t, "CUST-1", charge["customerId"])
		assert.Nil(t, charge["discountItems"])
		assert.Equal(t, "EUR", payload["settlementCurrency"])
		assert.NotContains(t, payload, "checkoutLanguage")

		items := charge["lineItems"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, 4.5, items[0].(map[string]any)["netAmount"])

		_, _ = w.Write([]byte(`{"id":"CHK-1","url":"https://www.coinqvest.com/en/checkout/CHK-1"}`))
	})

	res, err := c.CreateHostedCheckout(context.Background(), &HostedCheckout{
		Charge: Charge{
			CustomerID: "CUST-1",
			Currency:   "USD",
			LineItems: []LineItem{{
				Description: "T-Shirt",
				NetAmount:   NewAmount(decimal.RequireFromString("4.50")),
				Quantity:    2,
				ProductID:   "17",
			}},
		},
		SettlementCurrency: "EUR",
	})
	require.NoError(t, err)

	assert.Equal(t, "CHK-1", res.ID)
	assert.Equal(t, "https://www.coinqvest.com/en/checkout/CHK-1", res.URL)
}

func TestCreateHostedCheckoutMissingFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"CHK-1"}`))
	})

	_, err := c.CreateHostedCheckout(context.Background(), &HostedCheckout{})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestTransportError(t *testing.T) {
	c := NewMerchantClient(testAPIKey, testAPISecret, WithBaseURL("http://127.0.0.1:1"))

	_, err := c.Post(context.Background(), "/customer", struct{}{})
	assert.Error(t, err)
}

func TestAmountMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(TaxItem{Name: "VAT", Percent: NewAmount(decimal.RequireFromString("0.19"))})
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"VAT","percent":0.19}`, string(b))
}
