package providers

import (
	"github.com/smallbiznis/addonhook/internal/providers/email"
	"github.com/smallbiznis/addonhook/internal/providers/slack"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	slack.Module,
)
