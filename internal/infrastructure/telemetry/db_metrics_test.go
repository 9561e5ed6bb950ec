package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func newMockGorm(t *testing.T) *gorm.DB {
	t.Helper()
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB
}

func hasMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestNewDBMetrics(t *testing.T) {
	_, provider := newManualMeter(t)
	meter := provider.Meter("test")

	t.Run("creates all instruments", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		assert.NotNil(t, metrics.poolConnections)
		assert.NotNil(t, metrics.poolConnectionsMax)
		assert.NotNil(t, metrics.queryTotal)
		assert.NotNil(t, metrics.queryDuration)
		assert.NotNil(t, metrics.slowQueryTotal)
	})

	t.Run("fills zero config with defaults", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DBMetricsConfig{}, zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, 200*time.Millisecond, metrics.config.SlowQueryThreshold)
		assert.Equal(t, 15*time.Second, metrics.config.PoolStatsInterval)
	})

	t.Run("nil logger becomes nop", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), nil)
		require.NoError(t, err)
		require.NotNil(t, metrics.logger)
	})
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("records count and duration", func(t *testing.T) {
		reader, provider := newManualMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("t"), DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 200 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "reservations", 50*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))
		assert.True(t, hasMetric(rm, "db_query_total"))
		assert.True(t, hasMetric(rm, "db_query_duration_seconds"))
	})

	t.Run("slow query above threshold", func(t *testing.T) {
		reader, provider := newManualMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("t"), DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 100 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "reservations", 250*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))
		assert.True(t, hasMetric(rm, "db_slow_query_total"))
	})

	t.Run("no slow query below threshold", func(t *testing.T) {
		reader, provider := newManualMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("t"), DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 200 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "experience_events", 50*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name == "db_slow_query_total" {
					sum := m.Data.(metricdata.Sum[int64])
					for _, dp := range sum.DataPoints {
						assert.Equal(t, int64(0), dp.Value)
					}
				}
			}
		}
	})

	t.Run("normalizes operation and table", func(t *testing.T) {
		reader, provider := newManualMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("t"), DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 50 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		// Mixed-case operations, an empty operation, and an empty table on
		// a slow query must all record without panicking.
		metrics.RecordQuery(ctx, "select", "gift_vouchers", 10*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "Insert", "gift_vouchers", 10*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "", "gift_vouchers", 10*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "SELECT", "", 100*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))
		assert.True(t, hasMetric(rm, "db_query_total"))
		assert.True(t, hasMetric(rm, "db_slow_query_total"))
	})
}

func TestDBMetrics_PoolStats(t *testing.T) {
	ctx := context.Background()

	t.Run("collects pool stats periodically", func(t *testing.T) {
		reader, provider := newManualMeter(t)

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		metrics, err := NewDBMetrics(provider.Meter("t"), DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: 50 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)
		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		metrics.StartPoolStatsCollection(ctx)
		time.Sleep(100 * time.Millisecond)
		metrics.Stop()

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		assert.True(t, hasMetric(rm, "db_pool_connections_max"))
		assert.True(t, hasMetric(rm, "db_pool_connections"))
	})

	t.Run("no-op without a sql db", func(t *testing.T) {
		_, provider := newManualMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("t"), DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		metrics.StartPoolStatsCollection(ctx)
		time.Sleep(50 * time.Millisecond)
		metrics.Stop()
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		_, provider := newManualMeter(t)

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		metrics, err := NewDBMetrics(provider.Meter("t"), DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: time.Second,
		}, zap.NewNop())
		require.NoError(t, err)
		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(ctx)
		metrics.StartPoolStatsCollection(ctx)
		cancel()
		metrics.Stop()
	})
}

func TestDBMetrics_Stop(t *testing.T) {
	_, provider := newManualMeter(t)

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	metrics, err := NewDBMetrics(provider.Meter("t"), DBMetricsConfig{
		Enabled:           true,
		PoolStatsInterval: 100 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	metrics.SetSQLDB(mockDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	metrics.StartPoolStatsCollection(ctx)

	done := make(chan struct{})
	go func() {
		metrics.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() blocked for too long")
	}

	// Repeated stops must not panic.
	assert.NotPanics(t, func() { metrics.Stop() })
	assert.NotPanics(t, func() { metrics.Stop() })
}

func TestDBMetricsPlugin(t *testing.T) {
	_, provider := newManualMeter(t)
	metrics, err := NewDBMetrics(provider.Meter("t"), DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	plugin := NewDBMetricsPlugin(metrics, zap.NewNop())
	assert.Equal(t, "db_metrics", plugin.Name())

	require.NoError(t, plugin.Initialize(newMockGorm(t)))
}

func TestDetectOperationType(t *testing.T) {
	tests := []struct {
		sql      string
		expected string
	}{
		{"SELECT * FROM reservations", "SELECT"},
		{"select id from reservations", "SELECT"},
		{"  SELECT id FROM reservations", "SELECT"},
		{"INSERT INTO gift_vouchers (code) VALUES ('FARM-GIFT-1')", "INSERT"},
		{"UPDATE reservations SET status = 'CONFIRMED'", "UPDATE"},
		{"delete from reservations", "DELETE"},
		{"CREATE TABLE reservations", "OTHER"},
		{"TRUNCATE TABLE reservations", "OTHER"},
		{"", "OTHER"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, detectOperationType(tc.sql), "sql: %q", tc.sql)
	}
}

func TestRegisterDBMetrics(t *testing.T) {
	logger := zap.NewNop()

	t.Run("nil when disabled", func(t *testing.T) {
		metrics, err := RegisterDBMetrics(newMockGorm(t), nil, DBMetricsConfig{Enabled: false}, logger)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("nil without meter provider", func(t *testing.T) {
		metrics, err := RegisterDBMetrics(newMockGorm(t), nil, DBMetricsConfig{Enabled: true}, logger)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("registers when enabled", func(t *testing.T) {
		_, sdkProvider := newManualMeter(t)
		mp := &MeterProvider{
			provider: sdkProvider,
			logger:   logger,
			config:   MetricsConfig{Enabled: true},
		}

		metrics, err := RegisterDBMetrics(newMockGorm(t), mp, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 200 * time.Millisecond,
			PoolStatsInterval:  15 * time.Second,
		}, logger)
		require.NoError(t, err)
		require.NotNil(t, metrics)
	})
}

func TestDBMetrics_ConcurrentRecordQuery(t *testing.T) {
	ctx := context.Background()
	reader, provider := newManualMeter(t)

	metrics, err := NewDBMetrics(provider.Meter("t"), DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	operations := []string{"SELECT", "INSERT", "UPDATE", "DELETE"}
	tables := []string{"users", "reservations", "experience_events", "gift_vouchers"}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			metrics.RecordQuery(ctx, operations[i%4], tables[i%4], time.Duration(i)*time.Millisecond, nil)
		}(i)
	}
	wg.Wait()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.True(t, hasMetric(rm, "db_query_total"))
}
