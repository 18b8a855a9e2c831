package session

import (
	"github.com/harborline/shopd/internal/session/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("session.store",
	fx.Provide(repository.Provide),
)
