package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("movement_type", "sale"),
		attribute.String("customer_id", "456"),
		attribute.String("phone", "919876543210"),
		attribute.String("reason", "overpayment"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("movement_type"), attrs[0].Key)
	assert.Equal(t, attribute.Key("reason"), attrs[1].Key)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordStockMovement(ctx, "sale")
	m.RecordStockDrift(ctx, "product")
	m.RecordPaymentAccepted(ctx, "received")
	m.RecordPaymentRejected(ctx, "received", "overpayment")
	m.RecordChatMessage(ctx, "intent")
	m.RecordAICall(ctx, "ok")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "vyapar"}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordStockMovement(context.Background(), "purchase")
}

func TestStockDriftCounter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := New(Config{ServiceName: "vyapar"}, provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordStockDrift(ctx, "product")
	m.RecordStockDrift(ctx, "product")
	m.RecordStockDrift(ctx, "raw_material")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, md := range scope.Metrics {
			if md.Name != "vyapar_stock_drifts_total" {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value("entity_type")
				counts[v.AsString()] = dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"product": 2, "raw_material": 1}, counts)
}
