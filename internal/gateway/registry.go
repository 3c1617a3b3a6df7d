package gateway

import (
	"strings"

	"github.com/smallbiznis/addonhook/internal/gateway/domain"
)

// SettingsFunc returns the configured settings for a gateway module.
type SettingsFunc func(name string) map[string]any

type Registry struct {
	factories map[string]domain.Factory
	settings  SettingsFunc
}

func NewRegistry(settings SettingsFunc, factories ...domain.Factory) *Registry {
	registry := &Registry{factories: map[string]domain.Factory{}, settings: settings}
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		name := normalize(factory.Name())
		if name == "" {
			continue
		}
		registry.factories[name] = factory
	}
	return registry
}

func (r *Registry) Exists(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.factories[normalize(name)]
	return ok
}

// Gateway builds the adapter registered under name using its configured settings.
func (r *Registry) Gateway(name string) (domain.Gateway, error) {
	if r == nil {
		return nil, domain.ErrGatewayNotFound
	}
	name = normalize(name)
	factory, ok := r.factories[name]
	if !ok {
		return nil, domain.ErrGatewayNotFound
	}

	settings := map[string]any{}
	if r.settings != nil {
		if s := r.settings(name); s != nil {
			settings = s
		}
	}
	return factory.New(domain.Config{Name: name, Settings: settings})
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
