package gateway

import (
	"github.com/smallbiznis/addonhook/internal/config"
	"github.com/smallbiznis/addonhook/internal/gateway/banktransfer"
	"github.com/smallbiznis/addonhook/internal/gateway/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("gateway",
	fx.Provide(func(cfg config.Config) *Registry {
		return NewRegistry(
			cfg.GatewaySettings,
			stripe.NewFactory(),
			banktransfer.NewFactory(),
		)
	}),
)
