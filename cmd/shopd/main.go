// @title           Shopd API
// @version         1.0
// @description     Shopd purchase & inventory API

// @host      localhost:8080
// @BasePath  /
// @Schemes 	http https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-Api-Key

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/harborline/shopd/internal/apikey"
	"github.com/harborline/shopd/internal/audit"
	"github.com/harborline/shopd/internal/auth"
	"github.com/harborline/shopd/internal/bill"
	"github.com/harborline/shopd/internal/cache"
	"github.com/harborline/shopd/internal/config"
	"github.com/harborline/shopd/internal/currency"
	"github.com/harborline/shopd/internal/logger"
	"github.com/harborline/shopd/internal/migration"
	"github.com/harborline/shopd/internal/observability/metrics"
	"github.com/harborline/shopd/internal/observability/tracing"
	"github.com/harborline/shopd/internal/purchase"
	"github.com/harborline/shopd/internal/resource"
	"github.com/harborline/shopd/internal/seed"
	"github.com/harborline/shopd/internal/server"
	"github.com/harborline/shopd/internal/session"
	"github.com/harborline/shopd/internal/user"
	"github.com/harborline/shopd/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		metrics.Module,
		fx.Provide(
			func() (*snowflake.Node, error) {
				return snowflake.NewNode(1)
			},
			currency.NewProvider,
		),
		db.Module,
		cache.Module,
		fx.Invoke(func(conn *gorm.DB, node *snowflake.Node, cfg config.Config, log *zap.Logger) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.Bootstrap.EnsureAdmin {
				if err := seed.EnsureAdmin(conn, node); err != nil {
					return err
				}
			}
			if cfg.IsDev() && cfg.Bootstrap.SeedResources > 0 {
				if err := seed.SeedResources(conn, cfg.Bootstrap.SeedResources); err != nil {
					return err
				}
				log.Info("development inventory seeded")
			}
			return nil
		}),
		user.Module,
		session.Module,
		resource.Module,
		bill.Module,
		apikey.Module,
		audit.Module,
		purchase.Module,
		auth.Module,
		server.Module,
	)
	app.Run()
}
