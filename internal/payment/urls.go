package payment

import (
	"net/url"
	"strings"

	"github.com/devphaseX/cqpay-api.git/internal/store"
)

// returnURL is the "thank you" page the buyer lands on after paying.
func (p *CoinqvestPayment) returnURL(order *store.Order) string {
	if order.ReturnURL != "" {
		return order.ReturnURL
	}

	return p.storeURL + "/checkout/order-received/" + url.PathEscape(order.ID) + "/"
}

func (p *CoinqvestPayment) cancelURL(order *store.Order) string {
	cancelURL := order.CancelURL

	if cancelURL == "" {
		q := url.Values{"cancel_order": {"true"}, "order_id": {order.ID}}
		cancelURL = p.storeURL + "/cart/?" + q.Encode()
	}

	if p.cfg.ForceSSLCheckout {
		cancelURL = forceHTTPS(cancelURL)
	}

	return cancelURL
}

func forceHTTPS(rawURL string) string {
	u, err := url.Parse(rawURL)

	if err != nil || !strings.EqualFold(u.Scheme, "http") {
		return rawURL
	}

	u.Scheme = "https"

	return u.String()
}
