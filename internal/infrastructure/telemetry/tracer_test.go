package telemetry_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/farmeet/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func disabledTracerProvider(t *testing.T) *telemetry.TracerProvider {
	t.Helper()
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "farmeet-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)
	return tp
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	tp := disabledTracerProvider(t)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, "farmeet-test", tp.GetConfig().ServiceName)
	assert.False(t, tp.GetConfig().Enabled)

	// The no-op provider still hands out usable tracers.
	tracer := tp.Tracer("reservation")
	require.NotNil(t, tracer)
	_, span := tracer.Start(ctx, "reservation.confirm")
	span.End()

	assert.NoError(t, tp.ForceFlush(ctx))

	// Shutdown ignores an already cancelled context when disabled.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.NoError(t, tp.Shutdown(cancelled))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	// Needs a running OTLP collector, see `make otel-up`.
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "farmeet-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.True(t, tp.IsEnabled())

	tracer := tp.Tracer("sweep")
	_, span := tracer.Start(ctx, "sweep.run")
	span.End()

	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_SamplingRatios(t *testing.T) {
	ctx := context.Background()
	for _, ratio := range []float64{0.0, 0.5, 1.0} {
		tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
			Enabled:           false,
			CollectorEndpoint: "localhost:14317",
			SamplingRatio:     ratio,
			ServiceName:       "farmeet-test",
		}, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.False(t, tp.IsEnabled())
		assert.NoError(t, tp.Shutdown(ctx))
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := telemetry.Config{}

	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.CollectorEndpoint)
	assert.Zero(t, cfg.SamplingRatio)
	assert.Empty(t, cfg.ServiceName)
}

func TestNewTracerProvider_InvalidEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// The gRPC exporter connects lazily, so construction usually succeeds and
	// export failures surface later.
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "invalid-host:99999",
		SamplingRatio:     1.0,
		ServiceName:       "farmeet-test",
	}, zaptest.NewLogger(t, zaptest.Level(zap.ErrorLevel)))
	if err != nil {
		t.Logf("connection error: %v", err)
		return
	}
	_ = tp.Shutdown(context.Background())
}

func TestTracerProvider_SpanProfiles_Disabled(t *testing.T) {
	ctx := context.Background()
	tp := disabledTracerProvider(t)

	assert.False(t, tp.IsSpanProfilesEnabled())

	// EnableSpanProfiles is a no-op while telemetry is off.
	assert.NoError(t, tp.EnableSpanProfiles())
	assert.False(t, tp.IsSpanProfilesEnabled())

	assert.NoError(t, tp.Shutdown(ctx))
}

func TestTracerProvider_SpanProfiles_Idempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "farmeet-test-span-profiles",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(ctx) }()

	assert.False(t, tp.IsSpanProfilesEnabled())

	assert.NoError(t, tp.EnableSpanProfiles())
	assert.True(t, tp.IsSpanProfilesEnabled())

	assert.NoError(t, tp.EnableSpanProfiles())
	assert.True(t, tp.IsSpanProfilesEnabled())
}

func TestTracerProvider_SpanProfilesWithTracer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "farmeet-test-span-profiles-tracer",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(ctx) }()

	require.NoError(t, tp.EnableSpanProfiles())

	// With span profiles on, spans carry span_id as a pprof label. The span
	// must outlive one CPU profiler sample to show up.
	tracer := tp.Tracer("sweep")
	_, span := tracer.Start(ctx, "sweep.expire_batch")
	time.Sleep(15 * time.Millisecond)
	span.End()

	assert.NoError(t, tp.ForceFlush(ctx))
}

func TestTracerProvider_SpanProfilesConcurrentAccess(t *testing.T) {
	tp := disabledTracerProvider(t)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tp.EnableSpanProfiles()
			_ = tp.IsSpanProfilesEnabled()
		}()
	}
	wg.Wait()

	// Telemetry is off, so the flag never flips.
	assert.False(t, tp.IsSpanProfilesEnabled())
}
