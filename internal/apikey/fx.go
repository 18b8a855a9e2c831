package apikey

import (
	"github.com/harborline/shopd/internal/apikey/repository"
	"github.com/harborline/shopd/internal/apikey/service"
	"go.uber.org/fx"
)

var Module = fx.Module("apikey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
