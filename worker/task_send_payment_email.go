package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/gateway"
	"github.com/devphaseX/cqpay-api.git/internal/mailer"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/hibiken/asynq"
)

const TaskSendPaymentEmail = "task:send_payment_email"

type PayloadSendPaymentEmail struct {
	OrderID  string `json:"order_id"`
	Template string `json:"template"`
}

func (rt *RedisTaskDistributor) DistributeTaskSendPaymentEmail(ctx context.Context, payload *PayloadSendPaymentEmail, opts ...asynq.Option) error {
	opts = append([]asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.Unique(time.Minute * 10),
	}, opts...)

	return rt.enqueue(ctx, TaskSendPaymentEmail, "", payload, opts...)
}

func (processor *RedisTaskProcessor) ProcessTaskSendPaymentEmail(ctx context.Context, task *asynq.Task) error {
	var payload PayloadSendPaymentEmail

	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	return processor.sendPaymentEmail(ctx, &payload)
}

func (processor *RedisTaskProcessor) sendPaymentEmail(ctx context.Context, payload *PayloadSendPaymentEmail) error {
	order, err := processor.store.Orders.GetByID(ctx, payload.OrderID)

	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return fmt.Errorf("order %s not found: %w", payload.OrderID, asynq.SkipRetry)
		}

		return fmt.Errorf("failed to fetch order: %w", err)
	}

	if order.Billing.Email == "" {
		processor.logger.Warnw("order has no billing email", "order_id", order.ID)
		return nil
	}

	data := mailer.PaymentEmailData{
		OrderID:     order.ID,
		Reference:   order.Reference,
		FirstName:   order.Billing.FirstName,
		Amount:      order.TotalAmount.StringFixed(2),
		Currency:    order.Currency,
		PaymentID:   order.PaymentID,
		CheckoutURL: order.CheckoutURL,
	}

	if data.Reference == "" {
		data.Reference = order.ID
	}

	if details := gateway.PaymentDetailsFor(order); details != nil {
		data.PaymentURL = details.PaymentURL
	}

	err = processor.mailClient.Send(&mailer.MailOption{
		TemplateFile: payload.Template,
		To:           []string{order.Billing.Email},
	}, data)

	if err != nil {
		return fmt.Errorf("failed to send %s for order %s: %w", payload.Template, order.ID, err)
	}

	return nil
}
