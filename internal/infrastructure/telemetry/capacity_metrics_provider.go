// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GormCapacityMetricsProvider implements CapacityMetricsProvider using GORM.
// It queries the reservations and experience_events tables directly for
// aggregated metrics.
type GormCapacityMetricsProvider struct {
	db *gorm.DB
}

// NewGormCapacityMetricsProvider creates a new GormCapacityMetricsProvider.
func NewGormCapacityMetricsProvider(db *gorm.DB) *GormCapacityMetricsProvider {
	return &GormCapacityMetricsProvider{db: db}
}

// CountPendingReservations returns the number of reservations still waiting for payment.
func (p *GormCapacityMetricsProvider) CountPendingReservations(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("reservations").
		Where("status IN ?", []string{"PENDING_PAYMENT", "AWAITING_TRANSFER"}).
		Count(&count).Error

	return count, err
}

// CountSellingOutEvents returns the number of upcoming events at or below the seat threshold.
func (p *GormCapacityMetricsProvider) CountSellingOutEvents(ctx context.Context, seatThreshold int) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("experience_events").
		Where("start_at > ?", time.Now()).
		Where("remaining_capacity <= ?", seatThreshold).
		Count(&count).Error

	return count, err
}
