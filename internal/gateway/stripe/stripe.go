package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/addonhook/internal/gateway/domain"
	stripego "github.com/stripe/stripe-go/v82"
)

// subscriptionCanceller is the subset of the stripe-go subscription service used here.
type subscriptionCanceller interface {
	Cancel(ctx context.Context, id string, params *stripego.SubscriptionCancelParams) (*stripego.Subscription, error)
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Name() string {
	return "stripe"
}

func (f *Factory) New(cfg domain.Config) (domain.Gateway, error) {
	secret, ok := readString(cfg.Settings, "secret_key")
	if !ok {
		return nil, domain.ErrInvalidConfig
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, domain.ErrInvalidConfig
	}

	client := stripego.NewClient(secret, nil)
	return &Adapter{
		subscriptions: client.V1Subscriptions,
		invoiceNow:    readBool(cfg.Settings, "invoice_now"),
		prorate:       readBool(cfg.Settings, "prorate"),
	}, nil
}

type Adapter struct {
	subscriptions subscriptionCanceller
	invoiceNow    bool
	prorate       bool
}

func (a *Adapter) Name() string {
	return "stripe"
}

func (a *Adapter) CancelSubscription(ctx context.Context, subscriptionID string) error {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return domain.ErrInvalidSubscriptionID
	}

	params := &stripego.SubscriptionCancelParams{
		InvoiceNow: stripego.Bool(a.invoiceNow),
		Prorate:    stripego.Bool(a.prorate),
	}

	sub, err := a.subscriptions.Cancel(ctx, subscriptionID, params)
	if err != nil {
		return fmt.Errorf("stripe cancel subscription %s: %w", subscriptionID, err)
	}
	if sub != nil && sub.Status != stripego.SubscriptionStatusCanceled {
		return fmt.Errorf("stripe subscription %s left in status %s", subscriptionID, sub.Status)
	}
	return nil
}

func readString(settings map[string]any, key string) (string, bool) {
	value, ok := settings[key]
	if !ok {
		return "", false
	}
	switch cast := value.(type) {
	case string:
		return cast, true
	default:
		return "", false
	}
}

func readBool(settings map[string]any, key string) bool {
	value, ok := settings[key]
	if !ok {
		return false
	}
	switch cast := value.(type) {
	case bool:
		return cast
	case string:
		cast = strings.ToLower(strings.TrimSpace(cast))
		return cast == "true" || cast == "1" || cast == "yes"
	default:
		return false
	}
}
