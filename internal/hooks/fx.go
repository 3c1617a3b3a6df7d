package hooks

import "go.uber.org/fx"

var Module = fx.Module("hooks",
	fx.Provide(NewRegistry),
)
