package email

import (
	"github.com/smallbiznis/addonhook/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

// NewFromConfig returns an SMTP provider, or a no-op when no relay is configured.
func NewFromConfig(cfg config.Config, log *zap.Logger) (Provider, error) {
	if !cfg.Email.Enabled() {
		log.Named("providers.email").Info("smtp host not configured, email delivery disabled")
		return &NoOpProvider{}, nil
	}
	return NewSMTP(Config{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.SMTPUsername,
		Password: cfg.Email.SMTPPassword,
		From:     cfg.Email.SMTPFrom,
	})
}
