package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/umbra-img/umbra/internal/platform/cache"
	"github.com/umbra-img/umbra/internal/platform/db"
	"github.com/umbra-img/umbra/internal/platform/kv"
)

// OpenStore builds the key-value store selected by STORE_BACKEND and returns
// it with a cleanup function for the underlying connections.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (kv.Store, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return kv.NewMemory(), func() {}, nil
	case "redis":
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
		return kv.NewRedis(client, "umbra"), cleanup, nil
	case "postgres":
		if err := db.Migrate(ctx, cfg.PGDSN); err != nil {
			return nil, nil, err
		}
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewPostgres(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown store backend %q", cfg.StoreBackend)
	}
}
