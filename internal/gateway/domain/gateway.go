package domain

import (
	"context"
	"errors"
)

// Gateway is a configured payment gateway module.
type Gateway interface {
	Name() string
}

// Cancellable is implemented by gateways that can cancel a recurring
// subscription on the remote side.
type Cancellable interface {
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

type Config struct {
	Name     string
	Settings map[string]any
}

type Factory interface {
	Name() string
	New(cfg Config) (Gateway, error)
}

var (
	ErrGatewayNotFound       = errors.New("gateway_not_found")
	ErrInvalidConfig         = errors.New("invalid_gateway_config")
	ErrInvalidSubscriptionID = errors.New("invalid_subscription_id")
)
