package scheduler

import (
	"time"

	"github.com/devphaseX/cqpay-api.git/worker"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type AsyncTaskScheduler struct {
	scheduler *asynq.Scheduler
	logger    *zap.SugaredLogger
}

func NewAsyncTaskScheduler(redisOpt asynq.RedisClientOpt, options *asynq.SchedulerOpts, logger *zap.SugaredLogger) *AsyncTaskScheduler {
	if options == nil {
		options = &asynq.SchedulerOpts{}
	}

	if options.Logger == nil {
		options.Logger = worker.NewLogger(logger)
	}

	scheduler := asynq.NewScheduler(
		redisOpt,
		options,
	)

	return &AsyncTaskScheduler{
		scheduler: scheduler,
		logger:    logger,
	}
}

func (s *AsyncTaskScheduler) Run() error {
	return s.scheduler.Run()
}

func (s *AsyncTaskScheduler) RegisterTasks(reconcileInterval time.Duration) error {
	return s.reconcileCheckouts(reconcileInterval)
}

func (s *AsyncTaskScheduler) Close() {
	s.scheduler.Shutdown()
}
