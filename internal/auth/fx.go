package auth

import (
	"github.com/harborline/shopd/internal/auth/cookie"
	"github.com/harborline/shopd/internal/auth/fingerprint"
	"github.com/harborline/shopd/internal/auth/service"
	"github.com/harborline/shopd/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(
		func(cfg config.Config) (*fingerprint.Maker, error) {
			return fingerprint.NewMaker(cfg.FingerprintPepper)
		},
		func(cfg config.Config) (*cookie.Codec, error) {
			return cookie.NewCodec(cfg.CookieSecret)
		},
		service.NewService,
	),
)
