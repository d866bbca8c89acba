package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceTracker records which shoppers are currently viewing a product.
// Backed by Redis so counts stay correct across server instances; stale
// entries are swept on read and the whole key expires on its own.
type PresenceTracker interface {
	Touch(ctx context.Context, productID uint, viewerKey string) error
	ActiveViewers(ctx context.Context, productID uint) (int64, error)
}

type redisPresenceTracker struct {
	client *redis.Client
	window time.Duration
}

func NewPresenceTracker(client *redis.Client, window time.Duration) PresenceTracker {
	return &redisPresenceTracker{
		client: client,
		window: window,
	}
}

func presenceKey(productID uint) string {
	return fmt.Sprintf("presence:product:%d", productID)
}

func (t *redisPresenceTracker) Touch(ctx context.Context, productID uint, viewerKey string) error {
	key := presenceKey(productID)
	err := t.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: viewerKey,
	}).Err()
	if err != nil {
		return err
	}
	return t.client.Expire(ctx, key, t.window).Err()
}

func (t *redisPresenceTracker) ActiveViewers(ctx context.Context, productID uint) (int64, error) {
	key := presenceKey(productID)
	cutoff := strconv.FormatInt(time.Now().Add(-t.window).Unix(), 10)

	if err := t.client.ZRemRangeByScore(ctx, key, "-inf", cutoff).Err(); err != nil {
		return 0, err
	}
	return t.client.ZCard(ctx, key).Result()
}
