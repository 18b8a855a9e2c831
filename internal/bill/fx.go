package bill

import (
	"context"

	billdomain "github.com/harborline/shopd/internal/bill/domain"
	"github.com/harborline/shopd/internal/bill/repository"
	"github.com/harborline/shopd/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the bill store. Without a mongo URI the in-memory store
// serves as a non-durable fallback for local runs.
var Module = fx.Module("bill.store",
	fx.Provide(func(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (billdomain.Repository, error) {
		if cfg.MongoURI == "" {
			log.Warn("no mongo uri configured, bills are not durable")
			return repository.NewMemoryRepository(), nil
		}

		client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			OnStop: func(ctx context.Context) error {
				log.Info("closing document store connection")
				return client.Disconnect(ctx)
			},
		})
		return repository.NewMongoRepository(client.Database(cfg.MongoDB)), nil
	}),
)
