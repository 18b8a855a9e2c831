package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/harborline/shopd/internal/apikey/domain"
	auditdomain "github.com/harborline/shopd/internal/audit/domain"
	"github.com/harborline/shopd/internal/auth/cookie"
	authdomain "github.com/harborline/shopd/internal/auth/domain"
	billdomain "github.com/harborline/shopd/internal/bill/domain"
	"github.com/harborline/shopd/internal/config"
	"github.com/harborline/shopd/internal/currency"
	"github.com/harborline/shopd/internal/observability/metrics"
	"github.com/harborline/shopd/internal/observability/tracing"
	purchasedomain "github.com/harborline/shopd/internal/purchase/domain"
	resourcedomain "github.com/harborline/shopd/internal/resource/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Server holds the HTTP surface and its collaborators.
type Server struct {
	cfg config.Config
	log *zap.Logger

	resourceSvc resourcedomain.Service
	purchaseSvc purchasedomain.Service
	authSvc     authdomain.Service
	apikeySvc   apikeydomain.Service
	bills       billdomain.Repository
	rates       *currency.Provider
	codec       *cookie.Codec
	metrics     *metrics.Shop
	auditSvc    auditdomain.Service

	authLimiter *rateLimiter
}

// ServerParam collects the server dependencies.
type ServerParam struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	ResourceSvc resourcedomain.Service
	PurchaseSvc purchasedomain.Service
	AuthSvc     authdomain.Service
	APIKeySvc   apikeydomain.Service
	Bills       billdomain.Repository
	Rates       *currency.Provider
	Codec       *cookie.Codec
	Metrics     *metrics.Shop       `optional:"true"`
	AuditSvc    auditdomain.Service `optional:"true"`
}

// NewServer wires the handlers.
func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		resourceSvc: p.ResourceSvc,
		purchaseSvc: p.PurchaseSvc,
		authSvc:     p.AuthSvc,
		apikeySvc:   p.APIKeySvc,
		bills:       p.Bills,
		rates:       p.Rates,
		codec:       p.Codec,
		metrics:     p.Metrics,
		auditSvc:    p.AuditSvc,
		authLimiter: newRateLimiter(p.Cfg.AuthRateLimit, p.Cfg.AuthRateWindow),
	}
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config, m *metrics.Shop) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), metrics.GinMiddleware(m), tracing.GinMiddleware())
	return engine
}

// RegisterRoutes mounts every route on the engine. The auth pipe runs
// on the whole API group; guards decide per route.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.HealthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	api := engine.Group("/", s.AuthPipe())

	resources := api.Group("/resources")
	{
		resources.GET("", s.ListResources)
		resources.GET("/:id", s.GetResource)
		resources.POST("", s.Guard(RequirePrivilege()), s.CreateResource)
		resources.PUT("/:id", s.Guard(RequirePrivilege()), s.UpdateResource)
		resources.PATCH("/:id", s.Guard(RequirePrivilege()), s.PatchResource)
		resources.DELETE("/:id", s.Guard(RequirePrivilege()), s.DeleteResource)
	}

	shop := api.Group("/shop", s.Guard())
	{
		shop.POST("/purchase", s.Purchase)
		shop.POST("/refund", s.Refund)
		shop.GET("/bill/:id", s.GetBill)
		shop.GET("/bills", s.ListBills)
		shop.GET("/currency-rates", s.GetCurrencyRates)
	}

	api.GET("/audit", s.Guard(RequirePrivilege()), s.ListAuditLog)

	auth := api.Group("/auth")
	{
		auth.POST("/register", s.RateLimit(), s.Register)
		auth.POST("/login", s.RateLimit(), s.Login)
		auth.POST("/logout", s.Guard(RequireMethod(authdomain.MethodSession)), s.Logout)
		auth.GET("/info", s.Guard(), s.AuthInfo)
		auth.POST("/key", s.Guard(RequireMethod(authdomain.MethodSession)), s.CreateAPIKey)
		auth.GET("/keys", s.Guard(RequireMethod(authdomain.MethodSession)), s.ListAPIKeys)
		auth.DELETE("/key/:id", s.Guard(RequireMethod(authdomain.MethodSession)), s.RevokeAPIKey)
		auth.GET("/key/info", s.Guard(RequireMethod(authdomain.MethodAPIKey)), s.APIKeyInfo)
	}
}

// HealthCheck reports liveness.
// @Summary      Health Check
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /healthz [get]
func (s *Server) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Module wires the HTTP server into the fx lifecycle.
var Module = fx.Module("server",
	fx.Provide(NewEngine, NewServer),
	fx.Invoke(RunHTTP),
)

// RunHTTP starts the listener on app start and drains it on stop.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, s *Server, cfg config.Config, log *zap.Logger) {
	s.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
