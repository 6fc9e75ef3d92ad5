package main

import (
	"errors"
	"net/http"

	"github.com/devphaseX/cqpay-api.git/internal/validator"
)

type ResponseErrorCode string

const (
	ErrorCodeBadRequest          ResponseErrorCode = "bad_request"
	ErrorCodeUnauthorized        ResponseErrorCode = "unauthorized"
	ErrorCodeNotFound            ResponseErrorCode = "not_found"
	ErrorCodeMethodNotAllowed    ResponseErrorCode = "method_not_allowed"
	ErrorTooManyRequest          ResponseErrorCode = "too_many_requests"
	ErrorCodePaymentProcessor    ResponseErrorCode = "payment_processor_error"
	ErrorCodeGatewayUnavailable  ResponseErrorCode = "gateway_unavailable"
	ErrorCodeInternalServerError ResponseErrorCode = "internal_server_error"
)

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request error", "method", r.Method, "path", r.URL.Path, "error", err)

	var validationErrors *validator.ValidationErrors

	if errors.As(err, &validationErrors) {
		app.errorResponse(w, http.StatusBadRequest, validationErrors.FieldErrors(), envelope{"code": ErrorCodeBadRequest})
		return
	}
	app.errorResponse(w, http.StatusBadRequest, err.Error(), envelope{"code": ErrorCodeBadRequest})
}

func (app *application) unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.logger.Warnw(
		"unauthorized access",
		"method", r.Method,
		"path", r.URL.Path,
	)

	app.errorResponse(w, http.StatusUnauthorized, message, envelope{"code": ErrorCodeUnauthorized})
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	message := "rate limit exceeded"
	app.errorResponse(w, http.StatusTooManyRequests, message, envelope{"code": ErrorTooManyRequest})
}

// paymentProcessorResponse reports a COINQVEST rejection to the caller as is.
func (app *application) paymentProcessorResponse(w http.ResponseWriter, r *http.Request, message string, err error) {
	app.logger.Errorw("payment processor error", "method", r.Method, "path", r.URL.Path, "error", err)

	app.errorResponse(w, http.StatusBadGateway, message, envelope{"code": ErrorCodePaymentProcessor})
}

func (app *application) gatewayUnavailableResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("checkout attempted on unavailable gateway", "method", r.Method, "path", r.URL.Path)

	message := "COINQVEST payments are currently unavailable"
	app.errorResponse(w, http.StatusServiceUnavailable, message, envelope{"code": ErrorCodeGatewayUnavailable})
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)

	message := "the server encountered a problem and could not process your request"
	app.errorResponse(w, http.StatusInternalServerError, message, envelope{"code": ErrorCodeInternalServerError})
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, details ...string) {
	app.logger.Infow("not found attempt",
		"method", r.Method,
		"path", r.URL.Path,
	)

	message := "the requested resource could not be found"
	if len(details) > 0 && details[0] != "" {
		message = details[0]
	}

	app.errorResponse(w, http.StatusNotFound, message, envelope{"code": ErrorCodeNotFound})
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, http.StatusMethodNotAllowed, message, envelope{"code": ErrorCodeMethodNotAllowed})
}

func (app *application) errorResponse(w http.ResponseWriter, status int, message any, info ...envelope) {
	errBody := envelope{
		"message": message,
	}

	env := envelope{
		"status": "error",
		"error":  errBody,
	}

	if len(info) == 1 && len(info[0]) > 0 {
		for key, value := range info[0] {
			errBody[key] = value
		}
	}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logger.Errorw("failed to write JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) successResponse(w http.ResponseWriter, status int, data any) {
	env := envelope{
		"status": "success",
		"data":   data,
	}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logger.Errorw("failed to write JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}
