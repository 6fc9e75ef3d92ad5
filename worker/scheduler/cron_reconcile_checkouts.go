package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/coinqvest"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/devphaseX/cqpay-api.git/worker"
	"github.com/hibiken/asynq"
)

const CronReconcileCheckouts = "task:reconcile_checkouts"

// checkoutEvents maps a settled checkout state to the webhook event it would have sent.
var checkoutEvents = map[coinqvest.CheckoutState]coinqvest.EventType{
	coinqvest.CheckoutStateCompleted:         coinqvest.EventCheckoutCompleted,
	coinqvest.CheckoutStateUnderpaidAccepted: coinqvest.EventUnderpaidAccepted,
	coinqvest.CheckoutStateUnderpaid:         coinqvest.EventCheckoutUnderpaid,
	coinqvest.CheckoutStateRefunded:          coinqvest.EventRefundCompleted,
}

func (s *AsyncTaskScheduler) reconcileCheckouts(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)

	if _, err := s.scheduler.Register(spec, asynq.NewTask(CronReconcileCheckouts, nil), asynq.Queue(worker.QueueDefault)); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", CronReconcileCheckouts, err)
	}

	return nil
}

// HandleReconcileCheckouts settles pending orders whose webhook never arrived.
func (p *AsyncTaskProcessor) HandleReconcileCheckouts(ctx context.Context, t *asynq.Task) error {
	cutoff := p.now().Add(-p.cfg.CheckoutTTL)

	orders, err := p.store.Orders.GetAbandonedCheckouts(ctx, cutoff, p.cfg.BatchSize)

	if err != nil {
		return fmt.Errorf("failed to fetch abandoned checkouts: %w", err)
	}

	p.logger.Infow("reconciling checkouts", "count", len(orders), "cutoff", cutoff)

	for _, order := range orders {
		if err := p.reconcileOrder(ctx, order); err != nil {
			p.logger.Errorw("failed to reconcile order", "order_id", order.ID, "checkout_id", order.CheckoutID, "error", err)
		}
	}

	return nil
}

func (p *AsyncTaskProcessor) reconcileOrder(ctx context.Context, order *store.Order) error {
	checkout, err := p.checkouts.LookupCheckout(ctx, order.CheckoutID)

	if err != nil {
		return err
	}

	if eventType, ok := checkoutEvents[checkout.State]; ok {
		return p.distributor.DistributeTaskProcessCheckoutEvent(ctx, &worker.PayloadProcessCheckoutEvent{
			EventType:  eventType,
			CheckoutID: order.CheckoutID,
			PaymentID:  checkout.PaymentID,
		})
	}

	p.logger.Infow("cancelling abandoned checkout", "order_id", order.ID, "checkout_id", order.CheckoutID, "state", checkout.State)

	return p.store.Orders.UpdatePaymentStatus(ctx, order.ID, store.CancelledOrderStatus, "", false)
}
