package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devphaseX/cqpay-api.git/internal/coinqvest"
	"github.com/devphaseX/cqpay-api.git/internal/mailer"
	"github.com/devphaseX/cqpay-api.git/internal/payment"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/hibiken/asynq"
)

const TaskProcessCheckoutEvent = "task:process_checkout_event"

type PayloadProcessCheckoutEvent struct {
	EventType  coinqvest.EventType `json:"event_type"`
	CheckoutID string              `json:"checkout_id"`
	PaymentID  string              `json:"payment_id,omitempty"`
	RefundID   string              `json:"refund_id,omitempty"`
}

type eventOutcome struct {
	orderStatus   store.OrderStatus
	paymentStatus store.PaymentStatus
	markPaid      bool
	emailTemplate string
}

var eventOutcomes = map[coinqvest.EventType]eventOutcome{
	coinqvest.EventCheckoutCompleted: {
		orderStatus:   store.ProcessingOrderStatus,
		paymentStatus: store.CompletedPaymentStatus,
		markPaid:      true,
		emailTemplate: mailer.PaymentReceivedTemplate,
	},
	coinqvest.EventCheckoutUnderpaid: {
		orderStatus:   store.OnHoldOrderStatus,
		paymentStatus: store.UnderpaidPaymentStatus,
		emailTemplate: mailer.PaymentUnderpaidTemplate,
	},
	coinqvest.EventUnderpaidAccepted: {
		orderStatus:   store.ProcessingOrderStatus,
		paymentStatus: store.CompletedPaymentStatus,
		markPaid:      true,
		emailTemplate: mailer.PaymentReceivedTemplate,
	},
	coinqvest.EventRefundCompleted: {
		orderStatus:   store.RefundedOrderStatus,
		paymentStatus: store.RefundedPaymentStatus,
	},
}

// HandlesEvent reports whether events of this type change an order.
func HandlesEvent(eventType coinqvest.EventType) bool {
	_, ok := eventOutcomes[eventType]
	return ok
}

// OrderStatusForEvent is the status an order moves to when the event is applied.
func OrderStatusForEvent(eventType coinqvest.EventType) (store.OrderStatus, bool) {
	outcome, ok := eventOutcomes[eventType]
	return outcome.orderStatus, ok
}

func (rt *RedisTaskDistributor) DistributeTaskProcessCheckoutEvent(ctx context.Context, payload *PayloadProcessCheckoutEvent, opts ...asynq.Option) error {
	taskID := fmt.Sprintf("%s:%s:%s", payload.EventType, payload.CheckoutID, payload.RefundID)

	opts = append([]asynq.Option{
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(10),
	}, opts...)

	return rt.enqueue(ctx, TaskProcessCheckoutEvent, taskID, payload, opts...)
}

func (processor *RedisTaskProcessor) ProcessTaskCheckoutEvent(ctx context.Context, task *asynq.Task) error {
	var payload PayloadProcessCheckoutEvent

	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	return processor.applyCheckoutEvent(ctx, &payload)
}

func (processor *RedisTaskProcessor) applyCheckoutEvent(ctx context.Context, payload *PayloadProcessCheckoutEvent) error {
	outcome, ok := eventOutcomes[payload.EventType]

	if !ok {
		processor.logger.Warnw("ignoring checkout event", "type", payload.EventType, "checkout_id", payload.CheckoutID)
		return nil
	}

	order, err := processor.orderForCheckout(ctx, payload.CheckoutID)

	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			processor.logger.Errorw("no order for checkout", "checkout_id", payload.CheckoutID, "type", payload.EventType)
			return fmt.Errorf("order for checkout %s not found: %w", payload.CheckoutID, asynq.SkipRetry)
		}

		return err
	}

	if order.Status == outcome.orderStatus {
		processor.logger.Infow("checkout event already applied", "order_id", order.ID, "status", order.Status)
		return nil
	}

	// A late underpaid notice must not pull a settled order back on hold.
	if order.Paid && outcome.orderStatus == store.OnHoldOrderStatus {
		processor.logger.Warnw("ignoring underpaid event for paid order", "order_id", order.ID)
		return nil
	}

	paid := order.Paid || outcome.markPaid

	err = processor.store.Orders.ApplyPaymentEvent(ctx, order.ID, outcome.orderStatus, paid, &store.Payment{
		PaymentMethod: payment.MethodCoinqvest,
		CheckoutID:    payload.CheckoutID,
		TransactionID: payload.PaymentID,
		EventType:     string(payload.EventType),
		Status:        outcome.paymentStatus,
	})

	if err != nil {
		return fmt.Errorf("failed to apply %s to order %s: %w", payload.EventType, order.ID, err)
	}

	processor.logger.Infow("order payment status updated",
		"order_id", order.ID,
		"from", order.Status,
		"to", outcome.orderStatus,
		"event", payload.EventType,
	)

	if outcome.emailTemplate == "" {
		return nil
	}

	err = processor.taskDistributor.DistributeTaskSendPaymentEmail(ctx, &PayloadSendPaymentEmail{
		OrderID:  order.ID,
		Template: outcome.emailTemplate,
	})

	// The order is already updated; a lost email is not worth replaying the event.
	if err != nil {
		processor.logger.Errorw("failed to enqueue payment email", "order_id", order.ID, "error", err)
	}

	return nil
}

// orderForCheckout resolves the order through the checkout cache, falling back to the database.
func (processor *RedisTaskProcessor) orderForCheckout(ctx context.Context, checkoutID string) (*store.Order, error) {
	orderID, err := processor.cachestore.Checkouts.GetOrderID(ctx, checkoutID)

	switch {
	case err == nil:
		order, err := processor.store.Orders.GetByID(ctx, orderID)
		if err == nil && order.CheckoutID == checkoutID {
			return order, nil
		}
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			return nil, err
		}
	case !errors.Is(err, store.ErrRecordNotFound):
		processor.logger.Warnw("checkout cache lookup failed", "checkout_id", checkoutID, "error", err)
	}

	order, err := processor.store.Orders.GetByCheckoutID(ctx, checkoutID)

	if err != nil {
		return nil, err
	}

	if err := processor.cachestore.Checkouts.SetOrderID(ctx, checkoutID, order.ID); err != nil {
		processor.logger.Warnw("failed to cache checkout", "checkout_id", checkoutID, "error", err)
	}

	return order, nil
}
