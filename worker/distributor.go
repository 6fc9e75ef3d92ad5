package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type TaskDistributor interface {
	DistributeTaskProcessCheckoutEvent(ctx context.Context, payload *PayloadProcessCheckoutEvent, opts ...asynq.Option) error
	DistributeTaskSendPaymentEmail(ctx context.Context, payload *PayloadSendPaymentEmail, opts ...asynq.Option) error
}

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type RedisTaskDistributor struct {
	logger *zap.SugaredLogger
	client taskEnqueuer
}

func NewTaskDistributor(redisOpt asynq.RedisClientOpt, logger *zap.SugaredLogger) TaskDistributor {
	client := asynq.NewClient(redisOpt)

	return &RedisTaskDistributor{
		logger: logger,
		client: client,
	}
}

// enqueue treats a task id conflict as success: the same work is already queued,
// running, or archived after exhausting its retries. The last case needs a
// manual rerun, hence the warning with the task id.
func (rt *RedisTaskDistributor) enqueue(ctx context.Context, taskType, taskID string, payload any, opts ...asynq.Option) error {
	jsonPayload, err := json.Marshal(payload)

	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	if taskID != "" {
		opts = append(opts, asynq.TaskID(taskID))
	}

	task := asynq.NewTask(taskType, jsonPayload, opts...)

	taskInfo, err := rt.client.EnqueueContext(ctx, task)

	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			rt.logger.Warnw("task id already in use, check the archive if it was never applied",
				"type", taskType,
				"task_id", taskID,
			)
			return nil
		}

		return fmt.Errorf("failed to enqueue task %s: %w", taskType, err)
	}

	rt.logger.Infow("enqueued task",
		"type", taskInfo.Type,
		"task_id", taskInfo.ID,
		"queue", taskInfo.Queue,
		"max_retry", taskInfo.MaxRetry,
	)

	return nil
}
