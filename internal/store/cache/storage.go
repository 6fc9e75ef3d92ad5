package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	CheckoutExpTime     = time.Hour * 24 * 7
	WebhookEventExpTime = time.Hour * 24
)

type CheckoutStore interface {
	GetOrderID(ctx context.Context, checkoutID string) (string, error)
	SetOrderID(ctx context.Context, checkoutID, orderID string) error
}

type WebhookEventStore interface {
	// MarkSeen records the event key and reports whether it was new.
	MarkSeen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type Storage struct {
	Checkouts     CheckoutStore
	WebhookEvents WebhookEventStore
}

func NewRedisStorage(rdb *redis.Client) *Storage {
	return &Storage{
		Checkouts:     NewRedisCheckoutModel(rdb),
		WebhookEvents: NewRedisWebhookEventModel(rdb),
	}
}

func NewRedisClient(addr, pw string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pw,
		DB:       db,
	})
}
