package worker

import (
	"context"

	"github.com/devphaseX/cqpay-api.git/internal/mailer"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/devphaseX/cqpay-api.git/internal/store/cache"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

type CronTaskRunner interface {
	MountTasks(*asynq.ServeMux)
}

type TaskProcessor interface {
	Start() error
	Close()
	ProcessTaskCheckoutEvent(ctx context.Context, task *asynq.Task) error
	ProcessTaskSendPaymentEmail(ctx context.Context, task *asynq.Task) error
}

type RedisTaskProcessor struct {
	server          *asynq.Server
	store           *store.Storage
	cachestore      *cache.Storage
	logger          *zap.SugaredLogger
	mailClient      mailer.Client
	taskDistributor TaskDistributor
	cronTaskRunner  CronTaskRunner
}

type ProcessorConfig struct {
	Concurrency int
}

func NewRedisTaskProcessor(redisOpt asynq.RedisClientOpt, cfg ProcessorConfig, cronTaskRunner CronTaskRunner, taskDistributor TaskDistributor, store *store.Storage, cacheStore *cache.Storage, mailClient mailer.Client, logger *zap.SugaredLogger) TaskProcessor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Queues: map[string]int{
			QueueCritical: 10,
			QueueDefault:  5,
		},

		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Errorw("failed to process task",
				"type", task.Type(),
				"payload", string(task.Payload()),
				"error", err,
			)
		}),
		Concurrency: cfg.Concurrency,
		Logger:      NewLogger(logger),
	})

	processor := newProcessor(store, cacheStore, mailClient, taskDistributor, logger)
	processor.server = server
	processor.cronTaskRunner = cronTaskRunner

	return processor
}

func newProcessor(store *store.Storage, cacheStore *cache.Storage, mailClient mailer.Client, taskDistributor TaskDistributor, logger *zap.SugaredLogger) *RedisTaskProcessor {
	return &RedisTaskProcessor{
		store:           store,
		cachestore:      cacheStore,
		mailClient:      mailClient,
		taskDistributor: taskDistributor,
		logger:          logger,
	}
}

func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskProcessCheckoutEvent, processor.ProcessTaskCheckoutEvent)
	mux.HandleFunc(TaskSendPaymentEmail, processor.ProcessTaskSendPaymentEmail)

	if processor.cronTaskRunner != nil {
		processor.cronTaskRunner.MountTasks(mux)
	}

	return processor.server.Start(mux)
}

func (processor *RedisTaskProcessor) Close() {
	processor.server.Shutdown()
}
