package stripe

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/addonhook/internal/gateway/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v82"
)

type mockSubscriptions struct {
	mock.Mock
}

func (m *mockSubscriptions) Cancel(ctx context.Context, id string, params *stripego.SubscriptionCancelParams) (*stripego.Subscription, error) {
	args := m.Called(ctx, id, params)
	sub, _ := args.Get(0).(*stripego.Subscription)
	return sub, args.Error(1)
}

func TestFactoryRequiresSecretKey(t *testing.T) {
	f := NewFactory()

	_, err := f.New(domain.Config{Name: "stripe", Settings: map[string]any{}})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = f.New(domain.Config{Name: "stripe", Settings: map[string]any{"secret_key": "  "}})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	gw, err := f.New(domain.Config{Name: "stripe", Settings: map[string]any{"secret_key": "sk_test_123", "prorate": "true"}})
	require.NoError(t, err)
	assert.Equal(t, "stripe", gw.Name())

	_, ok := gw.(domain.Cancellable)
	assert.True(t, ok)
	assert.True(t, gw.(*Adapter).prorate)
	assert.False(t, gw.(*Adapter).invoiceNow)
}

func TestCancelSubscription(t *testing.T) {
	subs := &mockSubscriptions{}
	subs.On("Cancel", mock.Anything, "sub_123", mock.MatchedBy(func(p *stripego.SubscriptionCancelParams) bool {
		return p.InvoiceNow != nil && *p.InvoiceNow && p.Prorate != nil && !*p.Prorate
	})).Return(&stripego.Subscription{ID: "sub_123", Status: stripego.SubscriptionStatusCanceled}, nil).Once()

	adapter := &Adapter{subscriptions: subs, invoiceNow: true}
	require.NoError(t, adapter.CancelSubscription(context.Background(), " sub_123 "))
	subs.AssertExpectations(t)
}

func TestCancelSubscriptionErrors(t *testing.T) {
	subs := &mockSubscriptions{}
	adapter := &Adapter{subscriptions: subs}

	assert.ErrorIs(t, adapter.CancelSubscription(context.Background(), ""), domain.ErrInvalidSubscriptionID)

	remoteErr := errors.New("no such subscription")
	subs.On("Cancel", mock.Anything, "sub_missing", mock.Anything).Return(nil, remoteErr).Once()
	err := adapter.CancelSubscription(context.Background(), "sub_missing")
	assert.ErrorIs(t, err, remoteErr)

	subs.On("Cancel", mock.Anything, "sub_active", mock.Anything).
		Return(&stripego.Subscription{ID: "sub_active", Status: stripego.SubscriptionStatusActive}, nil).Once()
	assert.Error(t, adapter.CancelSubscription(context.Background(), "sub_active"))
}
