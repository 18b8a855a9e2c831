package cache

import (
	"context"

	"github.com/harborline/shopd/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the cache store and service. With caching disabled the
// service short-circuits and no redis connection is opened.
var Module = fx.Module("cache",
	fx.Provide(func(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Store {
		if cfg.DisableCache {
			return NewMemoryStore()
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return NewRedisStore(client)
	}),
	fx.Provide(func(cfg config.Config, store Store, log *zap.Logger) *Service {
		return NewService(store, log, cfg.DisableCache)
	}),
	fx.Invoke(func(lc fx.Lifecycle, svc *Service, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					affected, err := svc.InvalidateAll(context.Background())
					if err != nil {
						log.Warn("cache startup invalidation failed", zap.Error(err))
						return
					}
					log.Debug("cache invalidated on startup", zap.Int("affected", affected))
				}()
				return nil
			},
		})
	}),
)
