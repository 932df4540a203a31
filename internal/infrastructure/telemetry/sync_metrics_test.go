package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/wms/backend/internal/infrastructure/telemetry"
)

func newRecordingSyncMetrics(t *testing.T) (*telemetry.SyncMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewSyncMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestNewSyncMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewSyncMetrics(nil)

	assert.Nil(t, m)
	assert.Equal(t, "NewSyncMetrics: meter cannot be nil", err.Error())
}

func TestSyncMetrics_RecordFetch(t *testing.T) {
	m, reader := newRecordingSyncMetrics(t)
	ctx := context.Background()
	tenant := uuid.New()

	m.RecordFetch(ctx, tenant, "BOLCOM", 3, 2*time.Second, nil)
	m.RecordFetch(ctx, tenant, "BOLCOM", 0, time.Second, errors.New("boom"))
	m.RecordExportPolls(ctx, "BOLCOM", 4)
	m.RecordEnrichFallback(ctx, "BOLCOM", "not_found")

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["wms_sync_fetch_runs_total"])
	assert.Equal(t, int64(3), sums["wms_sync_fetched_products_total"])
	assert.Equal(t, int64(1), sums["wms_sync_enrich_fallbacks_total"])
}

func TestSyncMetrics_RecordImport(t *testing.T) {
	m, reader := newRecordingSyncMetrics(t)

	m.RecordImport(context.Background(), uuid.New(), 2, 1, 1)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["wms_sync_imported_products_total"])
	assert.Equal(t, int64(1), sums["wms_sync_linked_products_total"])
	assert.Equal(t, int64(1), sums["wms_sync_failed_import_items_total"])
}

func TestSyncMetrics_NilIsNoop(t *testing.T) {
	var m *telemetry.SyncMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordFetch(ctx, uuid.New(), "WOOCOMMERCE", 1, time.Second, nil)
		m.RecordExportPolls(ctx, "BOLCOM", 1)
		m.RecordEnrichFallback(ctx, "BOLCOM", "error")
		m.RecordImport(ctx, uuid.New(), 1, 1, 1)
	})
}
