package cancellation

import (
	"context"

	cancellationdomain "github.com/smallbiznis/addonhook/internal/cancellation/domain"
	"github.com/smallbiznis/addonhook/internal/hooks"
)

// HookPriority is the position of the cancellation handler on AddonCancelled.
const HookPriority = 1

// NewHookHandler adapts svc to the AddonCancelled hook point. The event
// carries the addon id in Vars["id"].
func NewHookHandler(svc cancellationdomain.Service) hooks.Handler {
	return func(ctx context.Context, evt hooks.Event) error {
		addonID, err := evt.IDVar("id")
		if err != nil {
			return err
		}
		_, err = svc.HandleAddonCancelled(ctx, evt.Actor, addonID)
		return err
	}
}

func registerHook(registry *hooks.Registry, svc cancellationdomain.Service) error {
	return registry.Register(hooks.PointAddonCancelled, HookPriority, "addon_cancellation", NewHookHandler(svc))
}
