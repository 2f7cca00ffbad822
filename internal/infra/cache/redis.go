package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ordermanagement/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOrderCache(client *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{client: client, ttl: ttl}
}

func (r *RedisOrderCache) Get(ctx context.Context, orderID string) (model.Order, error) {
	data, err := r.client.Get(ctx, cacheKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Order{}, ErrCacheMiss
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("redis get failed: %w", err)
	}

	var o model.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return model.Order{}, fmt.Errorf("unmarshal order failed: %w", err)
	}
	return o, nil
}

func (r *RedisOrderCache) Set(ctx context.Context, order model.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order failed: %w", err)
	}
	if err := r.client.Set(ctx, cacheKey(order.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisOrderCache) Delete(ctx context.Context, orderID string) error {
	if err := r.client.Del(ctx, cacheKey(orderID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func cacheKey(orderID string) string {
	return "order:" + orderID
}
