package gateway

import (
	"net/url"
	"strings"

	"github.com/devphaseX/cqpay-api.git/internal/store"
)

const (
	ID                = "coinqvest"
	MethodTitle       = "COINQVEST"
	MethodDescription = "Accept payments in crypto (BTC, ETH, XRP, XLM, LTC) and instantly settle in your local currency (USD, EUR, CAD, NGN)."
	OrderButtonText   = "Proceed to COINQVEST"

	paymentPageURL = "https://www.coinqvest.com/en/payment/"
	iconPath       = "assets/images/cq-logo.png"
)

// Gateway is what the storefront needs to render COINQVEST as a payment option.
type Gateway struct {
	settings  Settings
	assetsURL string
}

func New(settings Settings, assetsURL string) *Gateway {
	return &Gateway{
		settings:  settings,
		assetsURL: strings.TrimRight(assetsURL, "/"),
	}
}

func (g *Gateway) Settings() Settings {
	return g.settings
}

// Available reports whether checkouts can be started: the gateway must be
// enabled and have credentials.
func (g *Gateway) Available() bool {
	return g.settings.Enabled && g.settings.APIKey != "" && g.settings.APISecret != ""
}

// Icon returns the logo URL, or "" when icons are switched off.
func (g *Gateway) Icon() string {
	if !g.settings.ShowIcons || g.assetsURL == "" {
		return ""
	}

	return g.assetsURL + "/" + iconPath
}

type Description struct {
	ID                string `json:"id"`
	MethodTitle       string `json:"method_title"`
	MethodDescription string `json:"method_description"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	OrderButtonText   string `json:"order_button_text"`
	Icon              string `json:"icon,omitempty"`
	Enabled           bool   `json:"enabled"`
}

func (g *Gateway) Describe() Description {
	return Description{
		ID:                ID,
		MethodTitle:       MethodTitle,
		MethodDescription: MethodDescription,
		Title:             g.settings.Title,
		Description:       g.settings.Description,
		OrderButtonText:   OrderButtonText,
		Icon:              g.Icon(),
		Enabled:           g.Available(),
	}
}

type PaymentDetails struct {
	CheckoutID string `json:"checkout_id"`
	PaymentID  string `json:"payment_id,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
}

// PaymentDetailsFor builds the admin view of an order's COINQVEST references. It is nil
// when no checkout was ever created for the order.
func PaymentDetailsFor(order *store.Order) *PaymentDetails {
	if order == nil || order.CheckoutID == "" {
		return nil
	}

	details := &PaymentDetails{CheckoutID: order.CheckoutID}

	if order.PaymentID != "" {
		details.PaymentID = order.PaymentID
		details.PaymentURL = paymentPageURL + url.PathEscape(order.PaymentID)
	}

	return details
}
