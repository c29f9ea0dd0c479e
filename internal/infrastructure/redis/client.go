package redis

import (
	"context"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskdesk/internal/config"
)

const (
	dialTimeout = 3 * time.Second
	pingTimeout = 5 * time.Second
	// A CLI process issues one credential read or write at a time.
	poolSize = 2
)

// NewClient connects to the credential cache described by cfg and verifies
// it answers before returning.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goRedis.Client, error) {
	opts, err := goRedis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	opts.DialTimeout = dialTimeout
	opts.PoolSize = poolSize

	client := goRedis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Addr, err)
	}

	return client, nil
}
