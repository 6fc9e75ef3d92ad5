package main

import (
	"net/http"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/ratelimiter"
	"github.com/ulule/limiter/v3"
)

const (
	paymentRateLimit = "payment"
	webhookRateLimit = "webhook"
)

func (app *application) newRateLimitService(store limiter.Store) *ratelimiter.Service {
	svc := ratelimiter.NewService(store,
		func(w http.ResponseWriter, r *http.Request) {
			app.rateLimitExceededResponse(w, r)
		},
		func(w http.ResponseWriter, r *http.Request, err error) {
			app.serverErrorResponse(w, r, err)
		},
	)

	if !app.cfg.rateLimit.enabled {
		return svc
	}

	svc.AddEndpoint(ratelimiter.EndpointConfig{
		Name:    paymentRateLimit,
		Limit:   app.cfg.rateLimit.paymentPerMinute,
		Period:  time.Minute,
		KeyFunc: ratelimiter.IPKey,
	})

	svc.AddEndpoint(ratelimiter.EndpointConfig{
		Name:    webhookRateLimit,
		Limit:   app.cfg.rateLimit.webhookPerMinute,
		Period:  time.Minute,
		KeyFunc: ratelimiter.IPKey,
	})

	return svc
}
