package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/coinqvest"
	"github.com/devphaseX/cqpay-api.git/internal/gateway"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/shopspring/decimal"
)

const (
	defaultCustomerSource = "Woocommerce"
	netAmountPrecision    = 8
)

var hundred = decimal.NewFromInt(100)

type CoinqvestConfig struct {
	APIKey             string
	APISecret          string
	BaseURL            string
	SettlementCurrency string
	CheckoutLanguage   string
	WebhookURL         string
	StoreURL           string
	ForceSSLCheckout   bool
	CustomerSource     string
	Debug              bool
	// Timeout bounds each COINQVEST request; zero keeps the client default.
	Timeout time.Duration
}

type merchantAPI interface {
	CreateCustomer(ctx context.Context, customer *coinqvest.Customer) (string, error)
	CreateHostedCheckout(ctx context.Context, checkout *coinqvest.HostedCheckout) (*coinqvest.HostedCheckoutResult, error)
	GetCheckout(ctx context.Context, checkoutID string) (*coinqvest.Checkout, error)
}

type CoinqvestPayment struct {
	client   merchantAPI
	cfg      CoinqvestConfig
	storeURL string
}

func NewCoinqvestPayment(client merchantAPI, cfg CoinqvestConfig) *CoinqvestPayment {
	if cfg.CustomerSource == "" {
		cfg.CustomerSource = defaultCustomerSource
	}

	return &CoinqvestPayment{
		client:   client,
		cfg:      cfg,
		storeURL: strings.TrimRight(cfg.StoreURL, "/"),
	}
}

// InitiatePayment creates the COINQVEST customer for the order's billing
// details, then a hosted checkout for its items, and returns where to send the buyer.
func (p *CoinqvestPayment) InitiatePayment(ctx context.Context, order *store.Order, items store.OrderItems) (*Checkout, error) {
	customerID, err := p.client.CreateCustomer(ctx, p.buildCustomer(order))

	if err != nil {
		return nil, processorError("Failed to create customer. ", err)
	}

	checkout := p.buildHostedCheckout(order, items, customerID)

	result, err := p.client.CreateHostedCheckout(ctx, checkout)

	if err != nil {
		return nil, processorError("Failed to create checkout. ", err)
	}

	return &Checkout{
		ID:  result.ID,
		URL: result.URL,
	}, nil
}

func (p *CoinqvestPayment) LookupCheckout(ctx context.Context, checkoutID string) (*coinqvest.Checkout, error) {
	checkout, err := p.client.GetCheckout(ctx, checkoutID)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkout %s: %w", checkoutID, err)
	}

	return checkout, nil
}

func processorError(prefix string, err error) error {
	var apiErr *coinqvest.APIError

	if errors.As(err, &apiErr) {
		return &ProcessorError{Message: prefix + apiErr.Body, Err: err}
	}

	return &ProcessorError{Message: prefix + err.Error(), Err: err}
}

func (p *CoinqvestPayment) buildCustomer(order *store.Order) *coinqvest.Customer {
	billing := order.Billing

	return &coinqvest.Customer{
		Email:       sanitizeEmail(billing.Email),
		FirstName:   sanitizeText(billing.FirstName),
		LastName:    sanitizeText(billing.LastName),
		Company:     sanitizeText(billing.Company),
		Adr1:        sanitizeText(billing.Address1),
		Adr2:        sanitizeText(billing.Address2),
		Zip:         sanitizeText(billing.Postcode),
		City:        sanitizeText(billing.City),
		CountryCode: sanitizeText(billing.Country),
		PhoneNumber: sanitizeText(billing.Phone),
		Meta: map[string]string{
			"source": p.cfg.CustomerSource,
		},
	}
}

func (p *CoinqvestPayment) buildHostedCheckout(order *store.Order, items store.OrderItems, customerID string) *coinqvest.HostedCheckout {
	checkout := &coinqvest.HostedCheckout{
		Charge: coinqvest.Charge{
			CustomerID:        customerID,
			Currency:          order.Currency,
			LineItems:         buildLineItems(items.OfType(store.LineOrderItem)),
			DiscountItems:     buildDiscountItems(items.OfType(store.CouponOrderItem)),
			ShippingCostItems: buildShippingCostItems(items.OfType(store.ShippingOrderItem)),
			TaxItems:          buildTaxItems(items.OfType(store.TaxOrderItem)),
		},
		SettlementCurrency: gateway.OptionValue(p.cfg.SettlementCurrency),
		CheckoutLanguage:   gateway.OptionValue(p.cfg.CheckoutLanguage),
		Webhook:            p.cfg.WebhookURL,
		Links: coinqvest.Links{
			ReturnURL: p.returnURL(order),
			CancelURL: p.cancelURL(order),
		},
	}

	return checkout
}

func buildLineItems(items store.OrderItems) []coinqvest.LineItem {
	lineItems := make([]coinqvest.LineItem, 0, len(items))

	for _, item := range items {
		netAmount := item.Subtotal
		if item.Quantity > 0 {
			netAmount = item.Subtotal.DivRound(decimal.NewFromInt(int64(item.Quantity)), netAmountPrecision)
		}

		lineItems = append(lineItems, coinqvest.LineItem{
			Description: item.Name,
			NetAmount:   coinqvest.NewAmount(netAmount),
			Quantity:    item.Quantity,
			ProductID:   item.ProductID,
		})
	}

	return lineItems
}

// The remaining builders return nil for no items so the field is sent as null.

func buildDiscountItems(items store.OrderItems) []coinqvest.DiscountItem {
	var discountItems []coinqvest.DiscountItem

	for _, item := range items {
		discountItems = append(discountItems, coinqvest.DiscountItem{
			Description: item.Name,
			NetAmount:   coinqvest.NewAmount(item.Total),
		})
	}

	return discountItems
}

func buildShippingCostItems(items store.OrderItems) []coinqvest.ShippingCostItem {
	var shippingCostItems []coinqvest.ShippingCostItem

	for _, item := range items {
		shippingCostItems = append(shippingCostItems, coinqvest.ShippingCostItem{
			Description: item.Name,
			NetAmount:   coinqvest.NewAmount(item.Total),
			Taxable:     !item.TotalTax.IsZero(),
		})
	}

	return shippingCostItems
}

func buildTaxItems(items store.OrderItems) []coinqvest.TaxItem {
	var taxItems []coinqvest.TaxItem

	for _, item := range items {
		taxItems = append(taxItems, coinqvest.TaxItem{
			Name:    item.Name,
			Percent: coinqvest.NewAmount(item.RatePercent.Div(hundred)),
		})
	}

	return taxItems
}
