// Package cachetest provides in-memory cache stores for tests.
package cachetest

import (
	"context"
	"sync"

	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/devphaseX/cqpay-api.git/internal/store/cache"
)

type Checkouts struct {
	mu        sync.Mutex
	checkouts map[string]string
	Err       error
}

func NewStorage() (*cache.Storage, *Checkouts, *WebhookEvents) {
	checkouts, events := &Checkouts{checkouts: map[string]string{}}, &WebhookEvents{seen: map[string]bool{}}
	return &cache.Storage{Checkouts: checkouts, WebhookEvents: events}, checkouts, events
}

func (c *Checkouts) GetOrderID(ctx context.Context, checkoutID string) (string, error) {
	if c.Err != nil {
		return "", c.Err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	orderID, ok := c.checkouts[checkoutID]
	if !ok {
		return "", store.ErrRecordNotFound
	}

	return orderID, nil
}

func (c *Checkouts) SetOrderID(ctx context.Context, checkoutID, orderID string) error {
	if c.Err != nil {
		return c.Err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.checkouts[checkoutID] = orderID
	return nil
}

type WebhookEvents struct {
	mu   sync.Mutex
	seen map[string]bool
	Err  error
}

func (w *WebhookEvents) MarkSeen(ctx context.Context, key string) (bool, error) {
	if w.Err != nil {
		return false, w.Err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.seen[key] {
		return false, nil
	}

	w.seen[key] = true
	return true, nil
}

func (w *WebhookEvents) Forget(ctx context.Context, key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.seen, key)
	return nil
}
