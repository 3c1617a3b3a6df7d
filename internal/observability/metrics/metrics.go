package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Step names reported on absorbed failures.
const (
	StepNotes              = "notes"
	StepCancelSubscription = "cancel_subscription"
	StepClearSubscription  = "clear_subscription"
	StepListInvoices       = "list_invoices"
	StepSplitInvoice       = "split_invoice"
	StepEmail              = "email"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	addonCancellations metric.Int64Counter
	invoicesCancelled  metric.Int64Counter
	invoicesSplit      metric.Int64Counter
	stepFailures       metric.Int64Counter
	gatewayCalls       metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "addonhook"
	}
	meter := provider.Meter(name)

	addonCancellations, err := meter.Int64Counter("addonhook_addon_cancellations_total")
	if err != nil {
		return nil, err
	}
	invoicesCancelled, err := meter.Int64Counter("addonhook_invoices_cancelled_total")
	if err != nil {
		return nil, err
	}
	invoicesSplit, err := meter.Int64Counter("addonhook_invoices_split_total")
	if err != nil {
		return nil, err
	}
	stepFailures, err := meter.Int64Counter("addonhook_step_failures_total")
	if err != nil {
		return nil, err
	}
	gatewayCalls, err := meter.Int64Counter("addonhook_gateway_cancellations_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		addonCancellations: addonCancellations,
		invoicesCancelled:  invoicesCancelled,
		invoicesSplit:      invoicesSplit,
		stepFailures:       stepFailures,
		gatewayCalls:       gatewayCalls,
	}, nil
}

func (m *Metrics) RecordAddonCancellation(ctx context.Context) {
	if m == nil {
		return
	}
	m.addonCancellations.Add(ctx, 1)
}

// RecordInvoice counts a processed invoice by outcome.
func (m *Metrics) RecordInvoice(ctx context.Context, action string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("action", strings.TrimSpace(action)))
	switch action {
	case "split":
		m.invoicesSplit.Add(ctx, 1, metric.WithAttributes(attrs...))
		m.invoicesCancelled.Add(ctx, 1, metric.WithAttributes(attrs...))
	case "cancelled":
		m.invoicesCancelled.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordStepFailure increments absorbed failure counts for a hook step.
func (m *Metrics) RecordStepFailure(ctx context.Context, step string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("step", strings.TrimSpace(step)))
	m.stepFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordGatewayCancellation counts remote cancellation attempts by gateway and result.
func (m *Metrics) RecordGatewayCancellation(ctx context.Context, gateway, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("gateway", strings.ToLower(strings.TrimSpace(gateway))),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.gatewayCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"step":    {},
	"action":  {},
	"gateway": {},
	"status":  {},
	"point":   {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
