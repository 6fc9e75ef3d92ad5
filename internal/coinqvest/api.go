package coinqvest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

var ErrMissingField = errors.New("coinqvest response is missing a required field")

// APIError is returned by the typed helpers when COINQVEST answers with anything
// other than 200. Body carries the raw response so it can be surfaced to the merchant.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coinqvest %s failed: status=%d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func (c *MerchantClient) CreateCustomer(ctx context.Context, customer *Customer) (string, error) {
	var data createCustomerResponse

	if err := c.postJSON(ctx, "/customer", &createCustomerRequest{Customer: customer}, &data); err != nil {
		return "", err
	}

	if data.CustomerID == "" {
		return "", fmt.Errorf("%w: customerId", ErrMissingField)
	}

	return data.CustomerID, nil
}

func (c *MerchantClient) CreateHostedCheckout(ctx context.Context, checkout *HostedCheckout) (*HostedCheckoutResult, error) {
	var data HostedCheckoutResult

	if err := c.postJSON(ctx, "/checkout/hosted", checkout, &data); err != nil {
		return nil, err
	}

	if data.ID == "" || data.URL == "" {
		return nil, fmt.Errorf("%w: id/url", ErrMissingField)
	}

	return &data, nil
}

func (c *MerchantClient) GetCheckout(ctx context.Context, checkoutID string) (*Checkout, error) {
	res, err := c.Get(ctx, "/checkout", url.Values{"id": {checkoutID}})

	if err != nil {
		return nil, err
	}

	if res.HTTPStatusCode != http.StatusOK {
		return nil, &APIError{Endpoint: "/checkout", StatusCode: res.HTTPStatusCode, Body: string(res.ResponseBody)}
	}

	var data getCheckoutResponse

	if err := json.Unmarshal(res.ResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to decode checkout: %w", err)
	}

	return &data.Checkout, nil
}

func (c *MerchantClient) postJSON(ctx context.Context, path string, params, dst any) error {
	res, err := c.Post(ctx, path, params)

	if err != nil {
		return err
	}

	if res.HTTPStatusCode != http.StatusOK {
		return &APIError{Endpoint: path, StatusCode: res.HTTPStatusCode, Body: string(res.ResponseBody)}
	}

	if err := json.Unmarshal(res.ResponseBody, dst); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return nil
}
