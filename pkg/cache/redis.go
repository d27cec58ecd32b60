package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Igor-Vicente/English.Registration.API/pkg/config"
)

const dialTimeout = 5 * time.Second

// NewRedis connects the catalog cache. It returns a nil client without error when
// REDIS_ENABLED is false, so callers can treat the cache as optional.
func NewRedis(cfg config.RedisConfig) (redis.UniversalClient, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       []string{net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))},
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return client, nil
}
