package scheduler

import (
	"context"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/coinqvest"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/devphaseX/cqpay-api.git/worker"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type checkoutLookup interface {
	LookupCheckout(ctx context.Context, checkoutID string) (*coinqvest.Checkout, error)
}

type Config struct {
	// CheckoutTTL is how long a checkout may stay unpaid before it is reconciled.
	CheckoutTTL time.Duration
	BatchSize   int
}

type AsyncTaskProcessor struct {
	store       *store.Storage
	checkouts   checkoutLookup
	distributor worker.TaskDistributor
	logger      *zap.SugaredLogger
	cfg         Config
	now         func() time.Time
}

func NewAsyncTaskProcessor(cfg Config, store *store.Storage, checkouts checkoutLookup, distributor worker.TaskDistributor, logger *zap.SugaredLogger) *AsyncTaskProcessor {
	if cfg.CheckoutTTL <= 0 {
		cfg.CheckoutTTL = 24 * time.Hour
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}

	return &AsyncTaskProcessor{
		store:       store,
		checkouts:   checkouts,
		distributor: distributor,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (p *AsyncTaskProcessor) MountTasks(mux *asynq.ServeMux) {
	mux.HandleFunc(CronReconcileCheckouts, p.HandleReconcileCheckouts)
}
