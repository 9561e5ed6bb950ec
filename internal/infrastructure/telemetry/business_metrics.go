// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the reservation system.
// It tracks reservation creation, payment activity, and event capacity health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	reservationCreatedTotal *Counter
	reservationAmountTotal  *Counter
	paymentTotal            *Counter
	voucherRedeemedTotal    *Counter

	// Gauge metrics (point-in-time values)
	pendingReservationCount *Gauge
	sellingOutEventCount    *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	capacityProvider CapacityMetricsProvider
}

// CapacityMetricsProvider provides reservation and capacity data for periodic
// metrics collection. This interface allows the telemetry layer to query
// booking state without depending on the domain packages directly.
type CapacityMetricsProvider interface {
	// CountPendingReservations returns the number of reservations still waiting for payment
	CountPendingReservations(ctx context.Context) (int64, error)

	// CountSellingOutEvents returns the number of upcoming events at or below the seat threshold
	CountSellingOutEvents(ctx context.Context, seatThreshold int) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter            metric.Meter
	Logger           *zap.Logger
	CollectInterval  time.Duration // Default: 5 minutes
	SeatThreshold    int           // Default: 3 remaining seats
	CapacityProvider CapacityMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:            cfg.Meter,
		logger:           logger,
		stopChan:         make(chan struct{}),
		capacityProvider: cfg.CapacityProvider,
	}

	// Initialize counter metrics
	var err error

	// Reservation metrics
	bm.reservationCreatedTotal, err = NewCounter(
		cfg.Meter,
		"farmeet_reservation_created_total",
		"Total number of reservations created",
		"{reservations}",
	)
	if err != nil {
		return nil, err
	}

	bm.reservationAmountTotal, err = NewCounter(
		cfg.Meter,
		"farmeet_reservation_amount_total",
		"Total reserved amount in yen",
		"{yen}",
	)
	if err != nil {
		return nil, err
	}

	// Payment metrics
	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"farmeet_payment_total",
		"Total number of payment transactions",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.voucherRedeemedTotal, err = NewCounter(
		cfg.Meter,
		"farmeet_voucher_redeemed_total",
		"Total number of gift voucher redemptions",
		"{vouchers}",
	)
	if err != nil {
		return nil, err
	}

	// Capacity gauge metrics
	bm.pendingReservationCount, err = NewGauge(
		cfg.Meter,
		"farmeet_pending_reservation_count",
		"Number of reservations still waiting for payment",
		"{reservations}",
	)
	if err != nil {
		return nil, err
	}

	bm.sellingOutEventCount, err = NewGauge(
		cfg.Meter,
		"farmeet_selling_out_event_count",
		"Number of upcoming events at or below the seat threshold",
		"{events}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Reservation Metrics
// =============================================================================

// RecordReservationCreated records a reservation creation event.
// This should be called from the application layer when a reservation is created.
func (bm *BusinessMetrics) RecordReservationCreated(ctx context.Context, eventID string) {
	bm.reservationCreatedTotal.Inc(ctx,
		AttrEventID.String(eventID),
	)
}

// RecordReservationAmount records the reserved amount in whole yen.
func (bm *BusinessMetrics) RecordReservationAmount(ctx context.Context, eventID string, amountYen int64) {
	bm.reservationAmountTotal.Add(ctx, amountYen,
		AttrEventID.String(eventID),
	)
}

// RecordReservationWithAmount is a convenience method that records both reservation count and amount.
func (bm *BusinessMetrics) RecordReservationWithAmount(ctx context.Context, eventID string, amount decimal.Decimal) {
	bm.RecordReservationCreated(ctx, eventID)
	bm.RecordReservationAmount(ctx, eventID, amount.IntPart())
}

// =============================================================================
// Payment Metrics
// =============================================================================

// PaymentOutcome represents the outcome of a payment for metrics labeling.
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailed  PaymentOutcome = "failed"
)

// RecordPayment records a payment transaction.
// This should be called when a payment callback is processed.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, channel string, outcome PaymentOutcome) {
	bm.paymentTotal.Inc(ctx,
		AttrPaymentChannel.String(channel),
		AttrPaymentStatus.String(string(outcome)),
	)
}

// RecordVoucherRedeemed records a gift voucher redemption.
func (bm *BusinessMetrics) RecordVoucherRedeemed(ctx context.Context) {
	bm.voucherRedeemedTotal.Inc(ctx)
}

// =============================================================================
// Capacity Metrics
// =============================================================================

// RecordPendingReservationCount records the number of unpaid reservations.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordPendingReservationCount(ctx context.Context, count int64) {
	bm.pendingReservationCount.Record(ctx, count)
}

// RecordSellingOutEventCount records the number of events close to capacity.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordSellingOutEventCount(ctx context.Context, count int64) {
	bm.sellingOutEventCount.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects capacity metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration, seatThreshold int) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		if seatThreshold <= 0 {
			seatThreshold = 3
		}

		go bm.runPeriodicCollection(ctx, interval, seatThreshold)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration, seatThreshold int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectCapacityMetrics(ctx, seatThreshold)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectCapacityMetrics(ctx, seatThreshold)
		}
	}
}

// collectCapacityMetrics collects the capacity gauge metrics.
func (bm *BusinessMetrics) collectCapacityMetrics(ctx context.Context, seatThreshold int) {
	if bm.capacityProvider == nil {
		bm.logger.Debug("No capacity provider configured, skipping capacity metrics collection")
		return
	}

	pending, err := bm.capacityProvider.CountPendingReservations(ctx)
	if err != nil {
		bm.logger.Warn("Failed to count pending reservations", zap.Error(err))
	} else {
		bm.RecordPendingReservationCount(ctx, pending)
	}

	sellingOut, err := bm.capacityProvider.CountSellingOutEvents(ctx, seatThreshold)
	if err != nil {
		bm.logger.Warn("Failed to count selling-out events", zap.Error(err))
	} else {
		bm.RecordSellingOutEventCount(ctx, sellingOut)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
