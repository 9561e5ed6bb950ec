package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/farmeet/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_RecordReservationCreated(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	eventID := uuid.New().String()

	// Should not panic
	bm.RecordReservationCreated(ctx, eventID)
	bm.RecordReservationCreated(ctx, eventID)
}

func TestBusinessMetrics_RecordReservationAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	eventID := uuid.New().String()

	// Should not panic
	bm.RecordReservationAmount(ctx, eventID, 15000)
	bm.RecordReservationAmount(ctx, eventID, 5000)
}

func TestBusinessMetrics_RecordReservationWithAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	amount := decimal.NewFromInt(12000)

	// Should not panic and record both count and amount
	bm.RecordReservationWithAmount(ctx, uuid.New().String(), amount)
}

func TestBusinessMetrics_RecordPayment(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordPayment(ctx, "CARD", telemetry.PaymentOutcomeSuccess)
	bm.RecordPayment(ctx, "PAYPAY", telemetry.PaymentOutcomeFailed)
	bm.RecordVoucherRedeemed(ctx)
}

func TestBusinessMetrics_RecordCapacityGauges(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordPendingReservationCount(ctx, 12)
	bm.RecordSellingOutEventCount(ctx, 3)
}

// Mock implementation for testing periodic collection

type mockCapacityProvider struct {
	pending    int64
	sellingOut int64
	err        error
}

func (m *mockCapacityProvider) CountPendingReservations(ctx context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.pending, nil
}

func (m *mockCapacityProvider) CountSellingOutEvents(ctx context.Context, seatThreshold int) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.sellingOut, nil
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	capacityProvider := &mockCapacityProvider{
		pending:    7,
		sellingOut: 2,
	}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:            meter,
		Logger:           zap.NewNop(),
		CapacityProvider: capacityProvider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start periodic collection with short interval for testing
	bm.StartPeriodicCollection(ctx, 100*time.Millisecond, 3)

	// Wait for at least one collection cycle
	time.Sleep(150 * time.Millisecond)

	// Stop collection
	bm.Stop()

	// Should complete without error
}

func TestBusinessMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		// No capacity provider
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Should not panic with no capacity provider
	bm.StartPeriodicCollection(ctx, 50*time.Millisecond, 3)

	time.Sleep(100 * time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_Stop_Idempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Calling Stop multiple times should not panic
	bm.Stop()
	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Calling StartPeriodicCollection multiple times should only start once
	bm.StartPeriodicCollection(ctx, time.Hour, 3)
	bm.StartPeriodicCollection(ctx, time.Minute, 3)
	bm.StartPeriodicCollection(ctx, time.Second, 3)

	bm.Stop()
}

func TestPaymentOutcome_Values(t *testing.T) {
	assert.Equal(t, telemetry.PaymentOutcome("success"), telemetry.PaymentOutcomeSuccess)
	assert.Equal(t, telemetry.PaymentOutcome("failed"), telemetry.PaymentOutcomeFailed)
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
