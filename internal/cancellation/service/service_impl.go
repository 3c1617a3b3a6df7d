package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/smallbiznis/addonhook/internal/activity/domain"
	"github.com/smallbiznis/addonhook/internal/actor"
	addondomain "github.com/smallbiznis/addonhook/internal/addon/domain"
	cancellationdomain "github.com/smallbiznis/addonhook/internal/cancellation/domain"
	"github.com/smallbiznis/addonhook/internal/clock"
	"github.com/smallbiznis/addonhook/internal/config"
	"github.com/smallbiznis/addonhook/internal/gateway"
	gatewaydomain "github.com/smallbiznis/addonhook/internal/gateway/domain"
	invoicedomain "github.com/smallbiznis/addonhook/internal/invoice/domain"
	"github.com/smallbiznis/addonhook/internal/localapi"
	"github.com/smallbiznis/addonhook/internal/lock"
	obslogger "github.com/smallbiznis/addonhook/internal/observability/logger"
	"github.com/smallbiznis/addonhook/internal/observability/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type gatewayResolver interface {
	Gateway(name string) (gatewaydomain.Gateway, error)
}

type localAPI interface {
	CreateInvoice(ctx context.Context, tx *gorm.DB, by actor.Actor, req localapi.CreateInvoiceRequest) (localapi.CreateInvoiceResult, error)
	SendEmail(ctx context.Context, by actor.Actor, req localapi.SendEmailRequest) error
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Cfg        config.Config
	Clock      clock.Clock
	Addons     addondomain.Repository
	Invoices   invoicedomain.Service
	Gateways   *gateway.Registry
	API        *localapi.API
	Activity   activitydomain.Service
	HookConfig *config.HookConfigHolder
	Metrics    *metrics.Metrics `optional:"true"`
	Locker     lock.Locker      `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	tracer     trace.Tracer
	clock      clock.Clock
	addons     addondomain.Repository
	invoices   invoicedomain.Service
	gateways   gatewayResolver
	api        localAPI
	activity   activitydomain.Service
	hookConfig *config.HookConfigHolder
	metrics    *metrics.Metrics
	locker     lock.Locker
	lockTTL    time.Duration
}

const defaultLockTTL = 2 * time.Minute

func NewService(p Params) cancellationdomain.Service {
	lockTTL := time.Duration(p.Cfg.Redis.LockTTLSeconds) * time.Second
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("cancellation.service"),
		tracer:     otel.Tracer("addonhook/cancellation"),
		clock:      p.Clock,
		addons:     p.Addons,
		invoices:   p.Invoices,
		gateways:   p.Gateways,
		api:        p.API,
		activity:   p.Activity,
		hookConfig: p.HookConfig,
		metrics:    p.Metrics,
		locker:     p.Locker,
		lockTTL:    lockTTL,
	}
}

// HandleAddonCancelled runs the note, subscription and invoice steps for a
// cancelled addon. Only a missing addon is returned as an error.
func (s *Service) HandleAddonCancelled(ctx context.Context, by actor.Actor, addonID snowflake.ID) (cancellationdomain.Report, error) {
	if addonID == 0 {
		return cancellationdomain.Report{}, cancellationdomain.ErrInvalidAddonID
	}

	ctx, span := s.tracer.Start(ctx, "cancellation.HandleAddonCancelled",
		trace.WithAttributes(attribute.String("addon_id", addonID.String())),
	)
	defer span.End()

	log := obslogger.WithActor(obslogger.WithContext(ctx, s.log), by.Name()).
		With(zap.String("addon_id", addonID.String()))

	release, err := s.acquire(ctx, log, addonID)
	if err != nil {
		span.SetStatus(codes.Error, "addon locked")
		return cancellationdomain.Report{}, err
	}
	defer release()

	addon, err := s.addons.FindByID(ctx, s.db, addonID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "addon lookup failed")
		return cancellationdomain.Report{}, err
	}
	if addon == nil {
		span.SetStatus(codes.Error, "addon not found")
		return cancellationdomain.Report{}, cancellationdomain.ErrAddonNotFound
	}

	cfg := s.hookConfig.Get()
	report := cancellationdomain.Report{AddonID: addon.ID, Invoices: []cancellationdomain.InvoiceOutcome{}}

	s.appendNote(ctx, log, cfg, by, addon, &report)
	s.cancelSubscription(ctx, log, addon, &report)
	s.splitInvoices(ctx, log, cfg, by, addon, &report)

	s.metrics.RecordAddonCancellation(ctx)
	log.Info("addon cancellation processed",
		zap.Bool("note_appended", report.NoteAppended),
		zap.Bool("subscription_cancelled", report.SubscriptionCancelled),
		zap.Bool("subscription_cleared", report.SubscriptionCleared),
		zap.Int("invoices", len(report.Invoices)),
	)
	return report, nil
}

// acquire takes the per-addon lock so duplicate events for one addon do not
// split the same invoices concurrently.
func (s *Service) acquire(ctx context.Context, log *zap.Logger, addonID snowflake.ID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	key := "addonhook:addon_cancellation:" + addonID.String()
	token, ok, err := s.locker.TryLock(ctx, key, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire addon lock: %w", err)
	}
	if !ok {
		return nil, cancellationdomain.ErrCancellationInProgress
	}
	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			log.Warn("failed to release addon lock", zap.Error(err))
		}
	}, nil
}

// recordFailure absorbs a failed step: it is counted, logged and written to
// the activity log without an actor.
func (s *Service) recordFailure(ctx context.Context, log *zap.Logger, step string, message string, err error) {
	s.metrics.RecordStepFailure(ctx, step)
	trace.SpanFromContext(ctx).AddEvent("step_failed", trace.WithAttributes(
		attribute.String("step", step),
		attribute.String("error", fmt.Sprint(err)),
	))
	log.Warn("cancellation step failed", zap.String("step", step), zap.Error(err))
	if logErr := s.activity.Failure(ctx, message); logErr != nil {
		log.Error("failed to record activity", zap.String("step", step), zap.Error(logErr))
	}
}
