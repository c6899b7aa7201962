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
	stockMovements   metric.Int64Counter
	stockDrifts      metric.Int64Counter
	paymentsAccepted metric.Int64Counter
	paymentsRejected metric.Int64Counter
	chatMessages     metric.Int64Counter
	aiCalls          metric.Int64Counter
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
		name = "vyapar"
	}
	meter := provider.Meter(name)

	stockMovements, err := meter.Int64Counter("vyapar_stock_movements_total")
	if err != nil {
		return nil, err
	}
	stockDrifts, err := meter.Int64Counter("vyapar_stock_drifts_total")
	if err != nil {
		return nil, err
	}
	paymentsAccepted, err := meter.Int64Counter("vyapar_payments_accepted_total")
	if err != nil {
		return nil, err
	}
	paymentsRejected, err := meter.Int64Counter("vyapar_payments_rejected_total")
	if err != nil {
		return nil, err
	}
	chatMessages, err := meter.Int64Counter("vyapar_chat_messages_total")
	if err != nil {
		return nil, err
	}
	aiCalls, err := meter.Int64Counter("vyapar_ai_calls_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		stockMovements:   stockMovements,
		stockDrifts:      stockDrifts,
		paymentsAccepted: paymentsAccepted,
		paymentsRejected: paymentsRejected,
		chatMessages:     chatMessages,
		aiCalls:          aiCalls,
	}, nil
}

// RecordStockMovement increments stock movement counts.
func (m *Metrics) RecordStockMovement(ctx context.Context, movementType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("movement_type", strings.TrimSpace(movementType)))
	m.stockMovements.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStockDrift counts entities whose cached stock disagrees with the
// movement ledger during a background reconcile.
func (m *Metrics) RecordStockDrift(ctx context.Context, entityType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("entity_type", strings.TrimSpace(entityType)))
	m.stockDrifts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPaymentAccepted increments accepted payment counts.
func (m *Metrics) RecordPaymentAccepted(ctx context.Context, paymentType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("payment_type", strings.TrimSpace(paymentType)))
	m.paymentsAccepted.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPaymentRejected increments rejected payment counts.
func (m *Metrics) RecordPaymentRejected(ctx context.Context, paymentType, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("payment_type", strings.TrimSpace(paymentType)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.paymentsRejected.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordChatMessage increments inbound chat message counts.
func (m *Metrics) RecordChatMessage(ctx context.Context, route string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("route", strings.TrimSpace(route)))
	m.chatMessages.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAICall increments AI advisor call counts.
func (m *Metrics) RecordAICall(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.aiCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
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
	"movement_type": {},
	"entity_type":   {},
	"payment_type":  {},
	"reason":        {},
	"route":         {},
	"outcome":       {},
	"status_code":   {},
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
