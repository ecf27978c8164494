package config

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// OpenRedis returns nil, nil when REDIS_ADDR is empty: Redis is optional and
// callers fall back to in-process locking and no pub/sub.
func OpenRedis(ctx context.Context, cfg *Config) (*redis.Client, error) {
	val := strings.TrimSpace(cfg.RedisAddr)
	if val == "" {
		return nil, nil
	}

	var rdb *redis.Client
	if strings.HasPrefix(val, "redis://") || strings.HasPrefix(val, "rediss://") {
		opt, err := redis.ParseURL(val)
		if err != nil {
			return nil, err
		}
		rdb = redis.NewClient(opt)
	} else {
		rdb = redis.NewClient(&redis.Options{Addr: val})
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
