// Package storetest provides in-memory stores for tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/devphaseX/cqpay-api.git/internal/store/modelfilter"
)

type Orders struct {
	mu     sync.Mutex
	seq    int
	orders map[string]*store.Order
	items  map[string]store.OrderItems
	// payments receives the rows written by ApplyPaymentEvent.
	payments *Payments
	// Err, when set, is returned by every call.
	Err error
}

func NewOrders() *Orders {
	return &Orders{
		orders: make(map[string]*store.Order),
		items:  make(map[string]store.OrderItems),
	}
}

func NewStorage() (*store.Storage, *Orders, *Payments) {
	orders, payments := NewOrders(), NewPayments()
	orders.payments = payments
	return &store.Storage{Orders: orders, Payments: payments}, orders, payments
}

// Put stores a copy of order as is, keeping its id and timestamps.
func (s *Orders) Put(order *store.Order, items store.OrderItems) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := *order
	s.orders[o.ID] = &o
	s.items[o.ID] = items
}

func (s *Orders) Create(ctx context.Context, order *store.Order, items store.OrderItems) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	s.seq++
	order.ID = fmt.Sprintf("order-%d", s.seq)
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	s.mu.Unlock()

	for _, item := range items {
		item.OrderID = order.ID
	}

	s.Put(order, items)
	return nil
}

func (s *Orders) GetByID(ctx context.Context, id string) (*store.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}

	o := *order
	return &o, nil
}

func (s *Orders) GetByCheckoutID(ctx context.Context, checkoutID string) (*store.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range s.orders {
		if order.CheckoutID != "" && order.CheckoutID == checkoutID {
			o := *order
			return &o, nil
		}
	}

	return nil, store.ErrRecordNotFound
}

func (s *Orders) GetItems(ctx context.Context, orderID string) (store.OrderItems, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items[orderID], nil
}

func (s *Orders) SetCheckout(ctx context.Context, orderID, checkoutID, checkoutURL string) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return store.ErrRecordNotFound
	}

	now := time.Now()
	order.CheckoutID = checkoutID
	order.CheckoutURL = checkoutURL
	order.CheckoutCreatedAt = &now
	return nil
}

func (s *Orders) UpdatePaymentStatus(ctx context.Context, orderID string, status store.OrderStatus, paymentID string, paid bool) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return store.ErrRecordNotFound
	}

	order.Status = status
	order.Paid = paid
	if paymentID != "" {
		order.PaymentID = paymentID
	}
	return nil
}

// ApplyPaymentEvent fails without touching the order when either store is failing.
func (s *Orders) ApplyPaymentEvent(ctx context.Context, orderID string, status store.OrderStatus, paid bool, payment *store.Payment) error {
	if s.Err != nil {
		return s.Err
	}

	if s.payments != nil && s.payments.Err != nil {
		return s.payments.Err
	}

	if err := s.UpdatePaymentStatus(ctx, orderID, status, payment.TransactionID, paid); err != nil {
		return err
	}

	payment.OrderID = orderID

	if s.payments != nil {
		return s.payments.Create(ctx, payment)
	}

	return nil
}

func (s *Orders) GetAbandonedCheckouts(ctx context.Context, cutoff time.Time, limit int) ([]*store.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []*store.Order{}
	for _, order := range s.orders {
		if order.Status == store.PendingOrderStatus && order.CheckoutID != "" &&
			order.CheckoutCreatedAt != nil && order.CheckoutCreatedAt.Before(cutoff) {
			o := *order
			orders = append(orders, &o)
		}
	}

	sort.Slice(orders, func(i, j int) bool { return orders[i].CheckoutCreatedAt.Before(*orders[j].CheckoutCreatedAt) })

	if len(orders) > limit {
		orders = orders[:limit]
	}

	return orders, nil
}

func (s *Orders) List(ctx context.Context, fq store.PaginateQueryFilter, filter modelfilter.GetOrdersFilter) ([]*store.Order, store.Metadata, error) {
	if s.Err != nil {
		return nil, store.Metadata{}, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []*store.Order{}
	for _, order := range s.orders {
		if filter.Status != "" && string(order.Status) != filter.Status {
			continue
		}
		if filter.Reference != "" && order.Reference != filter.Reference {
			continue
		}
		o := *order
		matched = append(matched, &o)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := min(fq.Offset(), total)
	end := min(start+fq.Limit(), total)

	return matched[start:end], store.Metadata{
		CurrentPage:  fq.Page,
		PageSize:     fq.PageSize,
		TotalRecords: total,
	}, nil
}

type Payments struct {
	mu       sync.Mutex
	payments []*store.Payment
	Err      error
}

func NewPayments() *Payments {
	return &Payments{}
}

// Create appends payment. Production writes go through Orders.ApplyPaymentEvent.
func (s *Payments) Create(ctx context.Context, payment *store.Payment) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payment.ID = fmt.Sprintf("payment-%d", len(s.payments)+1)
	payment.CreatedAt = time.Now()

	p := *payment
	s.payments = append(s.payments, &p)
	return nil
}

func (s *Payments) GetByOrderID(ctx context.Context, orderID string) ([]*store.Payment, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payments := []*store.Payment{}
	for _, p := range s.payments {
		if p.OrderID == orderID {
			payments = append(payments, p)
		}
	}

	return payments, nil
}

func (s *Payments) All() []*store.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*store.Payment(nil), s.payments...)
}
