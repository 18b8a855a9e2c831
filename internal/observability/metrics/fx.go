package metrics

import "go.uber.org/fx"

var Module = fx.Module("observability.metrics",
	fx.Provide(NewShop),
)
