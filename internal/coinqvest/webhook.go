package coinqvest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

const WebhookSignatureHeader = "X-Webhook-Auth"

type EventType string

const (
	EventCheckoutCompleted EventType = "CHECKOUT_COMPLETED"
	EventCheckoutUnderpaid EventType = "CHECKOUT_UNDERPAID"
	EventUnderpaidAccepted EventType = "UNDERPAID_ACCEPTED"
	EventRefundCompleted   EventType = "REFUND_COMPLETED"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

type Refund struct {
	ID         string `json:"id"`
	CheckoutID string `json:"checkoutId"`
	PaymentID  string `json:"paymentId,omitempty"`
}

type EventData struct {
	Checkout *Checkout `json:"checkout,omitempty"`
	Refund   *Refund   `json:"refund,omitempty"`
}

type Event struct {
	Type      EventType `json:"type"`
	Timestamp string    `json:"timestamp,omitempty"`
	Data      EventData `json:"data"`
}

func (e *Event) CheckoutID() string {
	if e.Data.Checkout != nil && e.Data.Checkout.ID != "" {
		return e.Data.Checkout.ID
	}

	if e.Data.Refund != nil {
		return e.Data.Refund.CheckoutID
	}

	return ""
}

func (e *Event) PaymentID() string {
	if e.Data.Checkout != nil && e.Data.Checkout.PaymentID != "" {
		return e.Data.Checkout.PaymentID
	}

	if e.Data.Refund != nil {
		return e.Data.Refund.PaymentID
	}

	return ""
}

// WebhookSignature is hex(sha256(apiSecret + payload)).
func WebhookSignature(apiSecret string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(apiSecret))
	h.Write(payload)

	return hex.EncodeToString(h.Sum(nil))
}

func VerifyWebhookSignature(apiSecret string, payload []byte, signature string) error {
	if apiSecret == "" || signature == "" {
		return ErrInvalidSignature
	}

	expected := WebhookSignature(apiSecret, payload)

	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrInvalidSignature
	}

	return nil
}

// ConstructEvent verifies the payload and decodes it.
func ConstructEvent(payload []byte, signature, apiSecret string) (*Event, error) {
	if err := VerifyWebhookSignature(apiSecret, payload, signature); err != nil {
		return nil, err
	}

	var event Event

	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if event.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}

	return &event, nil
}
