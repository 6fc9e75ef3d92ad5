package coinqvest

import (
	"github.com/shopspring/decimal"
)

// Amount marshals as a bare JSON number; the API rejects quoted amounts.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

type Customer struct {
	Email       string            `json:"email"`
	FirstName   string            `json:"firstname"`
	LastName    string            `json:"lastname"`
	Company     string            `json:"company"`
	Adr1        string            `json:"adr1"`
	Adr2        string            `json:"adr2"`
	Zip         string            `json:"zip"`
	City        string            `json:"city"`
	CountryCode string            `json:"countrycode"`
	PhoneNumber string            `json:"phonenumber"`
	Meta        map[string]string `json:"meta,omitempty"`
}

type createCustomerRequest struct {
	Customer *Customer `json:"customer"`
}

type createCustomerResponse struct {
	CustomerID string `json:"customerId"`
}

type LineItem struct {
	Description string `json:"description"`
	NetAmount   Amount `json:"netAmount"`
	Quantity    int    `json:"quantity"`
	ProductID   string `json:"productId,omitempty"`
}

type DiscountItem struct {
	Description string `json:"description"`
	NetAmount   Amount `json:"netAmount"`
}

type ShippingCostItem struct {
	Description string `json:"description"`
	NetAmount   Amount `json:"netAmount"`
	Taxable     bool   `json:"taxable"`
}

type TaxItem struct {
	Name    string `json:"name"`
	Percent Amount `json:"percent"`
}

// A nil item list is sent as null, which the API reads as "no items of this kind".
type Charge struct {
	CustomerID        string             `json:"customerId"`
	Currency          string             `json:"currency"`
	LineItems         []LineItem         `json:"lineItems"`
	DiscountItems     []DiscountItem     `json:"discountItems"`
	ShippingCostItems []ShippingCostItem `json:"shippingCostItems"`
	TaxItems          []TaxItem          `json:"taxItems"`
}

type Links struct {
	ReturnURL string `json:"returnUrl,omitempty"`
	CancelURL string `json:"cancelUrl,omitempty"`
}

type HostedCheckout struct {
	Charge             Charge `json:"charge"`
	SettlementCurrency string `json:"settlementCurrency,omitempty"`
	CheckoutLanguage   string `json:"checkoutLanguage,omitempty"`
	Webhook            string `json:"webhook,omitempty"`
	Links              Links  `json:"links"`
}

type HostedCheckoutResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type CheckoutState string

const (
	CheckoutStateOpen              CheckoutState = "OPEN"
	CheckoutStateCompleted         CheckoutState = "COMPLETED"
	CheckoutStateUnderpaid         CheckoutState = "UNDERPAID"
	CheckoutStateUnderpaidAccepted CheckoutState = "UNDERPAID_ACCEPTED"
	CheckoutStateRefunded          CheckoutState = "REFUNDED"
	CheckoutStateExpired           CheckoutState = "EXPIRED"
)

// Paid reports whether the checkout settled, fully or by accepted underpayment.
func (s CheckoutState) Paid() bool {
	return s == CheckoutStateCompleted || s == CheckoutStateUnderpaidAccepted
}

type Checkout struct {
	ID                       string        `json:"id"`
	State                    CheckoutState `json:"state"`
	PaymentID                string        `json:"paymentId,omitempty"`
	SettlementCurrency       string        `json:"settlementCurrency,omitempty"`
	SettlementAmountReceived *Amount       `json:"settlementAmountReceived,omitempty"`
	Timestamp                string        `json:"timestamp,omitempty"`
}

type getCheckoutResponse struct {
	Checkout Checkout `json:"checkout"`
}
