package invoice

import (
	"github.com/smallbiznis/addonhook/internal/invoice/repository"
	"github.com/smallbiznis/addonhook/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
