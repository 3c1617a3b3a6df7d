package localapi

import "go.uber.org/fx"

var Module = fx.Module("localapi",
	fx.Provide(New),
)
