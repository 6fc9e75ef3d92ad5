package main

import (
	"net/http"
)

func (app *application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	app.successResponse(w, http.StatusOK, envelope{
		"status": "available",
		"env":    app.cfg.env,
	})
}

func (app *application) describeGateway(w http.ResponseWriter, r *http.Request) {
	app.successResponse(w, http.StatusOK, envelope{"gateway": app.gateway.Describe()})
}

// gatewaySettings shows the effective settings with the secret masked, plus any
// warnings about credentials that look wrong.
func (app *application) gatewaySettings(w http.ResponseWriter, r *http.Request) {
	settings := app.gateway.Settings()

	warnings := settings.Validate(validate)
	if warnings == nil {
		warnings = []string{}
	}

	app.successResponse(w, http.StatusOK, envelope{
		"settings":    settings.Masked(),
		"webhook_url": app.cfg.webhookURL(),
		"warnings":    warnings,
	})
}
