package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/auth"
	"github.com/devphaseX/cqpay-api.git/internal/gateway"
	"github.com/devphaseX/cqpay-api.git/internal/payment"
	"github.com/devphaseX/cqpay-api.git/internal/ratelimiter"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/devphaseX/cqpay-api.git/internal/store/cache"
	"github.com/devphaseX/cqpay-api.git/worker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const webhookPath = "/v1/webhooks/coinqvest"

type application struct {
	cfg              config
	logger           *zap.SugaredLogger
	store            *store.Storage
	cacheStore       *cache.Storage
	authToken        auth.AuthToken
	payment          payment.Payment
	gateway          *gateway.Gateway
	taskDistributor  worker.TaskDistributor
	rateLimitService *ratelimiter.Service
}

type config struct {
	addr      string
	env       string
	apiURL    string
	storeURL  string
	assetsURL string

	db        dbConfig
	redisCfg  redisConfig
	coinqvest coinqvestConfig
	gateway   gateway.Settings
	mail      mailConfig
	auth      authConfig
	cors      corsConfig
	rateLimit rateLimitConfig
	scheduler schedulerConfig
}

type dbConfig struct {
	dsn          string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
	automigrate  bool
}

type redisConfig struct {
	addr string
	pw   string
	db   int
}

type coinqvestConfig struct {
	baseURL          string
	forceSSLCheckout bool
	customerSource   string
	timeout          time.Duration
}

type mailConfig struct {
	fromEmail   string
	host        string
	sandboxHost string
	port        int
	username    string
	password    string
	sandbox     bool
}

type authConfig struct {
	secret           string
	adminTokenExpiry time.Duration
}

type corsConfig struct {
	trustedOrigins []string
}

type rateLimitConfig struct {
	enabled          bool
	paymentPerMinute int64
	webhookPerMinute int64
}

type schedulerConfig struct {
	checkoutTTL       time.Duration
	reconcileInterval time.Duration
	workerConcurrency int
}

// webhookURL is the public address COINQVEST posts checkout events to.
func (c config) webhookURL() string {
	return c.apiURL + webhookPath
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.cfg.cors.trustedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.notFoundResponse(w, r)
	})

	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthcheck", app.healthcheckHandler)
		r.Get("/gateway", app.describeGateway)

		r.Route("/orders/{orderID}/payment", func(r chi.Router) {
			r.With(app.rateLimitService.Limit(paymentRateLimit)).Post("/", app.initiatePayment)
			r.With(app.rateLimitService.Limit(paymentRateLimit)).Get("/qr", app.checkoutQRCode)
		})

		r.With(app.rateLimitService.Limit(webhookRateLimit)).Post("/webhooks/coinqvest", app.handleCoinqvestWebhook)

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.requireAdmin)

			r.Post("/orders", app.createOrder)
			r.Get("/orders", app.listOrders)
			r.Get("/orders/{orderID}/payment", app.paymentDetails)
			r.Get("/gateway/settings", app.gatewaySettings)
		})
	})

	return r
}

func (app *application) serve() error {
	srv := &http.Server{
		Addr:         app.cfg.addr,
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		s := <-quit

		app.logger.Infow("caught signal", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.cfg.addr, "env", app.cfg.env)
	err := srv.ListenAndServe()

	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.cfg.addr, "env", app.cfg.env)
	return nil
}
