package gateway

import (
	"strings"

	"github.com/devphaseX/cqpay-api.git/internal/validator"
)

const (
	apiKeyLength    = 12
	apiSecretLength = 29

	// unsetOption is what the settings screens store for "use account default".
	unsetOption = "0"
)

type Settings struct {
	Enabled            bool   `json:"enabled"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	APIKey             string `json:"api_key" validate:"omitempty,len=12"`
	APISecret          string `json:"api_secret" validate:"omitempty,len=29"`
	SettlementCurrency string `json:"settlement_currency" validate:"omitempty,max=8"`
	CheckoutLanguage   string `json:"checkout_language" validate:"omitempty,max=8"`
	ShowIcons          bool   `json:"show_icons"`
	Debug              bool   `json:"debug"`
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:     true,
		Title:       "Bitcoin, Ethereum, Litecoin or other",
		Description: "Pay with Bitcoin, Ethereum, Stellar Lumens, Ripple, Litecoin or any other cryptocurrency.",
		ShowIcons:   true,
	}
}

// OptionValue normalises a select-style option: "" and "0" both mean unset.
func OptionValue(v string) string {
	v = strings.TrimSpace(v)

	if v == unsetOption {
		return ""
	}

	return v
}

// Masked returns a copy safe to show in admin responses.
func (s Settings) Masked() Settings {
	if len(s.APISecret) > 4 {
		s.APISecret = strings.Repeat("*", len(s.APISecret)-4) + s.APISecret[len(s.APISecret)-4:]
	} else if s.APISecret != "" {
		s.APISecret = strings.Repeat("*", len(s.APISecret))
	}

	return s
}

var settingWarnings = map[string]string{
	"api_key":             "API Key seems to be wrong. Please double check.",
	"api_secret":          "API Secret seems to be wrong. Please double check.",
	"settlement_currency": "Settlement currency seems to be wrong. Please double check.",
	"checkout_language":   "Checkout language seems to be wrong. Please double check.",
}

// Validate never fails hard: wrong-looking credentials are surfaced as warnings
// because COINQVEST may change key formats.
func (s Settings) Validate(v *validator.Validator) []string {
	errs := v.Struct(s)

	if errs == nil {
		return nil
	}

	warnings := []string{}

	for _, field := range []string{"api_key", "api_secret", "settlement_currency", "checkout_language"} {
		if _, ok := errs.FieldErrors()[field]; ok {
			warnings = append(warnings, settingWarnings[field])
		}
	}

	return warnings
}
