package client

import (
	"github.com/redis/go-redis/v9"

	"storefront-checkout/internal/config"
)

func NewRedisClient(cfg *config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr})
}
