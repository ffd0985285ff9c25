package lock

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/parkingcontrol/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrNotAcquired = errors.New("lock_not_acquired")

const (
	DefaultTTL   = 10 * time.Second
	DefaultRetry = 25 * time.Millisecond
)

// Locker serializes work on a key. Acquire blocks until the key is free or
// ctx is done, and the returned release func is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

var Module = fx.Module("lock",
	fx.Provide(NewRedisClient),
	fx.Provide(New),
)

// New picks the Redis locker when a client is configured, else the in-process one.
func New(client *redis.Client, log *zap.Logger) Locker {
	if client == nil {
		log.Info("per-key lock is in-process, set REDIS_ADDR to share it across replicas")
		return NewLocalLocker()
	}
	return NewRedisLocker(client, DefaultTTL, DefaultRetry)
}

// NewRedisClient returns nil when REDIS_ADDR is unset.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			if err := client.Ping(pingCtx).Err(); err != nil {
				return err
			}
			log.Info("redis connected", zap.String("addr", cfg.RedisAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
