package cache

import (
	"context"
	"fmt"

	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/redis/go-redis/v9"
)

type RedisCheckoutModel struct {
	client *redis.Client
}

func NewRedisCheckoutModel(client *redis.Client) CheckoutStore {
	return &RedisCheckoutModel{client}
}

func createCheckoutCacheKey(checkoutID string) string {
	return fmt.Sprintf("coinqvest-checkout:%s", checkoutID)
}

func (s *RedisCheckoutModel) GetOrderID(ctx context.Context, checkoutID string) (string, error) {
	orderID, err := s.client.Get(ctx, createCheckoutCacheKey(checkoutID)).Result()

	if err == redis.Nil {
		return "", store.ErrRecordNotFound
	}

	if err != nil {
		return "", err
	}

	return orderID, nil
}

func (s *RedisCheckoutModel) SetOrderID(ctx context.Context, checkoutID, orderID string) error {
	return s.client.SetEx(ctx, createCheckoutCacheKey(checkoutID), orderID, CheckoutExpTime).Err()
}
