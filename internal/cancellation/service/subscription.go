package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	addondomain "github.com/smallbiznis/addonhook/internal/addon/domain"
	cancellationdomain "github.com/smallbiznis/addonhook/internal/cancellation/domain"
	gatewaydomain "github.com/smallbiznis/addonhook/internal/gateway/domain"
	"github.com/smallbiznis/addonhook/internal/observability/metrics"
	"go.uber.org/zap"
)

func (s *Service) cancelSubscription(ctx context.Context, log *zap.Logger, addon *addondomain.Addon, report *cancellationdomain.Report) {
	ref := strings.TrimSpace(addon.SubscriptionID)
	if ref == "" {
		return
	}
	gatewayName := strings.TrimSpace(addon.PaymentMethod)
	log = log.With(zap.String("subscription_id", ref), zap.String("gateway", gatewayName))

	gw, err := s.gateways.Gateway(gatewayName)
	switch {
	case errors.Is(err, gatewaydomain.ErrGatewayNotFound):
		gw = nil
	case err != nil:
		// The gateway exists but cannot be built, so the reference is kept for a retry.
		s.metrics.RecordGatewayCancellation(ctx, gatewayName, "config_error")
		s.recordFailure(ctx, log, metrics.StepCancelSubscription,
			fmt.Sprintf("Unable to cancel subscription %s on gateway %s for addon #%d. Reason: %v", ref, gatewayName, addon.ID, err), err)
		return
	}

	if canceller, ok := gw.(gatewaydomain.Cancellable); ok {
		if err := canceller.CancelSubscription(ctx, ref); err != nil {
			s.metrics.RecordGatewayCancellation(ctx, gatewayName, "error")
			s.recordFailure(ctx, log, metrics.StepCancelSubscription,
				fmt.Sprintf("Unable to cancel subscription %s on gateway %s for addon #%d. Reason: %v", ref, gatewayName, addon.ID, err), err)
			return
		}
		s.metrics.RecordGatewayCancellation(ctx, gatewayName, "ok")
		report.SubscriptionCancelled = true
		log.Info("subscription cancelled at gateway")
	} else {
		msg := fmt.Sprintf("Subscription %s on addon #%d cleared without remote cancellation: gateway %s does not support it", ref, addon.ID, displayGateway(gatewayName))
		if err := s.activity.Log(ctx, "", msg); err != nil {
			log.Error("failed to record activity", zap.Error(err))
		}
	}

	if err := s.addons.ClearSubscription(ctx, s.db, addon.ID, s.clock.Now()); err != nil {
		s.recordFailure(ctx, log, metrics.StepClearSubscription,
			fmt.Sprintf("Unable to clear subscription on addon #%d. Reason: %v", addon.ID, err), err)
		return
	}
	addon.SubscriptionID = ""
	report.SubscriptionCleared = true
}

func displayGateway(name string) string {
	if name == "" {
		return "(none)"
	}
	return name
}
