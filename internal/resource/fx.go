package resource

import (
	"github.com/harborline/shopd/internal/resource/repository"
	"github.com/harborline/shopd/internal/resource/service"
	"go.uber.org/fx"
)

var Module = fx.Module("resource.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
