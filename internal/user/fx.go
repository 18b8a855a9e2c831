package user

import (
	"github.com/harborline/shopd/internal/user/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("user.store",
	fx.Provide(repository.Provide),
)
