package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordAttendanceEvent(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { metrics = nil })

	require.NoError(t, InitMetrics(provider.Meter("test")))

	ctx := context.Background()
	RecordAttendanceEvent(ctx, "check-in", OutcomeCreated)
	RecordAttendanceEvent(ctx, "check-in", OutcomeCreated)
	RecordAttendanceEvent(ctx, "check-in", OutcomeConflict)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "attendance.events.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
				counts[outcome.AsString()] = dp.Value
			}
		}
	}

	assert.Equal(t, int64(2), counts[OutcomeCreated])
	assert.Equal(t, int64(1), counts[OutcomeConflict])
}

func TestRecordWithoutInitIsNoop(t *testing.T) {
	metrics = nil
	assert.NotPanics(t, func() {
		RecordAttendanceEvent(context.Background(), "check-out", OutcomeError)
		RecordMailRetry(context.Background(), "reset_password", "retry")
	})
}
