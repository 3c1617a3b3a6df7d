package banktransfer

import "github.com/smallbiznis/addonhook/internal/gateway/domain"

// Factory builds the manual bank transfer module. Manual payments have no
// remote subscription, so the adapter does not implement domain.Cancellable.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Name() string {
	return "banktransfer"
}

func (f *Factory) New(cfg domain.Config) (domain.Gateway, error) {
	return &Adapter{}, nil
}

type Adapter struct{}

func (a *Adapter) Name() string {
	return "banktransfer"
}
