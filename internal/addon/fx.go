package addon

import (
	"github.com/smallbiznis/addonhook/internal/addon/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("addon.repository",
	fx.Provide(repository.Provide),
)
