package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/coinqvest"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/devphaseX/cqpay-api.git/internal/store/storetest"
	"github.com/devphaseX/cqpay-api.git/worker"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLookup struct {
	states map[string]coinqvest.CheckoutState
}

func (f *fakeLookup) LookupCheckout(ctx context.Context, checkoutID string) (*coinqvest.Checkout, error) {
	state, ok := f.states[checkoutID]
	if !ok {
		return nil, errors.New("checkout not found")
	}

	return &coinqvest.Checkout{ID: checkoutID, State: state, PaymentID: "P-" + checkoutID}, nil
}

type fakeDistributor struct {
	events []*worker.PayloadProcessCheckoutEvent
}

func (d *fakeDistributor) DistributeTaskProcessCheckoutEvent(ctx context.Context, payload *worker.PayloadProcessCheckoutEvent, opts ...asynq.Option) error {
	d.events = append(d.events, payload)
	return nil
}

func (d *fakeDistributor) DistributeTaskSendPaymentEmail(ctx context.Context, payload *worker.PayloadSendPaymentEmail, opts ...asynq.Option) error {
	return nil
}

func TestHandleReconcileCheckouts(t *testing.T) {
	storage, orders, _ := storetest.NewStorage()
	distributor := &fakeDistributor{}
	lookup := &fakeLookup{states: map[string]coinqvest.CheckoutState{
		"CHK-paid":    coinqvest.CheckoutStateCompleted,
		"CHK-expired": coinqvest.CheckoutStateExpired,
		"CHK-fresh":   coinqvest.CheckoutStateOpen,
	}}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-48 * time.Hour)
	recent := now.Add(-time.Hour)

	orders.Put(&store.Order{ID: "A", Status: store.PendingOrderStatus, CheckoutID: "CHK-paid", CheckoutCreatedAt: &old}, nil)
	orders.Put(&store.Order{ID: "B", Status: store.PendingOrderStatus, CheckoutID: "CHK-expired", CheckoutCreatedAt: &old}, nil)
	orders.Put(&store.Order{ID: "C", Status: store.PendingOrderStatus, CheckoutID: "CHK-fresh", CheckoutCreatedAt: &recent}, nil)
	orders.Put(&store.Order{ID: "D", Status: store.PendingOrderStatus, CheckoutID: "CHK-lost", CheckoutCreatedAt: &old}, nil)

	p := NewAsyncTaskProcessor(Config{CheckoutTTL: 24 * time.Hour}, storage, lookup, distributor, zap.NewNop().Sugar())
	p.now = func() time.Time { return now }

	require.NoError(t, p.HandleReconcileCheckouts(context.Background(), asynq.NewTask(CronReconcileCheckouts, nil)))

	require.Len(t, distributor.events, 1)
	assert.Equal(t, coinqvest.EventCheckoutCompleted, distributor.events[0].EventType)
	assert.Equal(t, "CHK-paid", distributor.events[0].CheckoutID)
	assert.Equal(t, "P-CHK-paid", distributor.events[0].PaymentID)

	b, _ := orders.GetByID(context.Background(), "B")
	assert.Equal(t, store.CancelledOrderStatus, b.Status)

	c, _ := orders.GetByID(context.Background(), "C")
	assert.Equal(t, store.PendingOrderStatus, c.Status)

	d, _ := orders.GetByID(context.Background(), "D")
	assert.Equal(t, store.PendingOrderStatus, d.Status)
}

func TestHandleReconcileCheckoutsStoreError(t *testing.T) {
	storage, orders, _ := storetest.NewStorage()
	orders.Err = errors.New("db down")

	p := NewAsyncTaskProcessor(Config{}, storage, &fakeLookup{}, &fakeDistributor{}, zap.NewNop().Sugar())

	assert.Error(t, p.HandleReconcileCheckouts(context.Background(), asynq.NewTask(CronReconcileCheckouts, nil)))
}
