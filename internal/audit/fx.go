package audit

import (
	"github.com/harborline/shopd/internal/audit/repository"
	"github.com/harborline/shopd/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
