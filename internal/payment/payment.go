package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/devphaseX/cqpay-api.git/internal/coinqvest"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"go.uber.org/zap"
)

const MethodCoinqvest = "coinqvest"

var ErrUnknownPaymentMethod = errors.New("invalid payment method")

type Checkout struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Payment interface {
	InitiatePayment(ctx context.Context, order *store.Order, items store.OrderItems) (*Checkout, error)
	LookupCheckout(ctx context.Context, checkoutID string) (*coinqvest.Checkout, error)
}

// ProcessorError carries a merchant-facing message built from the processor's
// response, e.g. "Failed to create checkout. {...}".
type ProcessorError struct {
	Message string
	Err     error
}

func (e *ProcessorError) Error() string {
	return e.Message
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

type Config struct {
	Coinqvest CoinqvestConfig
}

func NewPayment(paymentMethod string, cfg *Config, logger *zap.SugaredLogger) (Payment, error) {
	switch paymentMethod {
	case MethodCoinqvest:
		opts := []coinqvest.Option{
			coinqvest.WithBaseURL(cfg.Coinqvest.BaseURL),
			coinqvest.WithLogger(logger, cfg.Coinqvest.Debug),
		}

		if cfg.Coinqvest.Timeout > 0 {
			opts = append(opts, coinqvest.WithHTTPClient(&http.Client{Timeout: cfg.Coinqvest.Timeout}))
		}

		client := coinqvest.NewMerchantClient(cfg.Coinqvest.APIKey, cfg.Coinqvest.APISecret, opts...)
		return NewCoinqvestPayment(client, cfg.Coinqvest), nil
	default:
		return nil, ErrUnknownPaymentMethod
	}
}
