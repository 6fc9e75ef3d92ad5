package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisWebhookEventModel struct {
	client *redis.Client
}

func NewRedisWebhookEventModel(client *redis.Client) WebhookEventStore {
	return &RedisWebhookEventModel{client}
}

func createWebhookEventKey(key string) string {
	return fmt.Sprintf("coinqvest-webhook:%s", key)
}

func (s *RedisWebhookEventModel) MarkSeen(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, createWebhookEventKey(key), 1, WebhookEventExpTime).Result()

	if err != nil {
		return false, fmt.Errorf("failed to mark webhook event: %w", err)
	}

	return ok, nil
}

func (s *RedisWebhookEventModel) Forget(ctx context.Context, key string) error {
	return s.client.Del(ctx, createWebhookEventKey(key)).Err()
}
