package mailer

import "embed"

//go:embed "templates"
var templateFS embed.FS

const (
	PaymentReceivedTemplate  = "payment_received.tmpl"
	PaymentUnderpaidTemplate = "payment_underpaid.tmpl"
)

type Client interface {
	Send(option *MailOption, data any) error
}

// PaymentEmailData is rendered into the payment notification templates.
type PaymentEmailData struct {
	OrderID     string
	Reference   string
	FirstName   string
	Amount      string
	Currency    string
	PaymentID   string
	PaymentURL  string
	CheckoutURL string
}
