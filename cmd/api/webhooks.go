package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/devphaseX/cqpay-api.git/internal/coinqvest"
	"github.com/devphaseX/cqpay-api.git/worker"
)

const maxWebhookBodyBytes = int64(65536)

// handleCoinqvestWebhook verifies a COINQVEST event and queues it for the worker.
// Anything acknowledged with 200 will not be redelivered.
func (app *application) handleCoinqvestWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)

	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to read webhook payload: %w", err))
		return
	}

	event, err := coinqvest.ConstructEvent(payload, r.Header.Get(coinqvest.WebhookSignatureHeader), app.gateway.Settings().APISecret)

	if err != nil {
		if errors.Is(err, coinqvest.ErrInvalidSignature) {
			app.unauthorizedResponse(w, r, "invalid webhook signature")
			return
		}

		app.badRequestResponse(w, r, err)
		return
	}

	if !worker.HandlesEvent(event.Type) {
		app.logger.Infow("unhandled COINQVEST event type", "type", event.Type)
		app.successResponse(w, http.StatusOK, envelope{"received": true})
		return
	}

	checkoutID := event.CheckoutID()
	if checkoutID == "" {
		app.badRequestResponse(w, r, errors.New("event does not reference a checkout"))
		return
	}

	sum := sha256.Sum256(payload)
	eventKey := hex.EncodeToString(sum[:])

	isNew, err := app.cacheStore.WebhookEvents.MarkSeen(r.Context(), eventKey)

	if err != nil {
		// Processing is idempotent, so a dedupe miss only costs a no-op task.
		app.logger.Warnw("webhook dedupe unavailable", "error", err)
		isNew = true
	}

	if !isNew {
		app.logger.Infow("duplicate COINQVEST event", "type", event.Type, "checkout_id", checkoutID)
		app.successResponse(w, http.StatusOK, envelope{"received": true})
		return
	}

	task := &worker.PayloadProcessCheckoutEvent{
		EventType:  event.Type,
		CheckoutID: checkoutID,
		PaymentID:  event.PaymentID(),
	}

	if event.Data.Refund != nil {
		task.RefundID = event.Data.Refund.ID
	}

	if err := app.taskDistributor.DistributeTaskProcessCheckoutEvent(r.Context(), task); err != nil {
		// Let COINQVEST redeliver.
		_ = app.cacheStore.WebhookEvents.Forget(r.Context(), eventKey)
		app.serverErrorResponse(w, r, fmt.Errorf("failed to queue checkout event: %w", err))
		return
	}

	app.logger.Infow("COINQVEST event queued", "type", event.Type, "checkout_id", checkoutID)
	app.successResponse(w, http.StatusOK, envelope{"received": true})
}
