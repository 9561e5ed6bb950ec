// GORM query tracing with slow query detection.
package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled          bool          // Enable database tracing
	LogFullSQL       bool          // Include full SQL statements in spans (dev only)
	SlowQueryThresh  time.Duration // Threshold for marking queries as slow (default: 200ms)
	DBSystem         string        // Database system name (default: "postgresql")
	WithoutVariables bool          // Exclude query variables from SQL statement
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// contextKey is the context key type for query timing.
type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// WithQueryStartTime returns a context carrying the query start time, used
// by the after callbacks to compute elapsed time.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}

// markQueryStart stamps the statement context with the current time.
func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// annotateSpan enriches the active span with row counts, table name, errors
// and a slow query event when elapsed time exceeds the threshold.
func annotateSpan(db *gorm.DB, slowThresh time.Duration) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// Not-found is a normal outcome for lookups, not a span error.
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(startTime)
		if elapsed > slowThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", slowThresh.Milliseconds()),
			))
		}
	}
}

// registerQueryCallbacks hooks before/after callbacks onto every GORM
// operation type under the given name prefix.
func registerQueryCallbacks(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	registrations := []error{
		db.Callback().Create().Before("gorm:create").Register(prefix+":before_create", before),
		db.Callback().Query().Before("gorm:query").Register(prefix+":before_query", before),
		db.Callback().Update().Before("gorm:update").Register(prefix+":before_update", before),
		db.Callback().Delete().Before("gorm:delete").Register(prefix+":before_delete", before),
		db.Callback().Row().Before("gorm:row").Register(prefix+":before_row", before),
		db.Callback().Raw().Before("gorm:raw").Register(prefix+":before_raw", before),
	}
	if after != nil {
		registrations = append(registrations,
			db.Callback().Create().After("gorm:create").Register(prefix+":after_create", after),
			db.Callback().Query().After("gorm:query").Register(prefix+":after_query", after),
			db.Callback().Update().After("gorm:update").Register(prefix+":after_update", after),
			db.Callback().Delete().After("gorm:delete").Register(prefix+":after_delete", after),
			db.Callback().Row().After("gorm:row").Register(prefix+":after_row", after),
			db.Callback().Raw().After("gorm:raw").Register(prefix+":after_raw", after),
		)
	}
	for _, err := range registrations {
		if err != nil {
			return err
		}
	}
	return nil
}

// DBTracingPlugin wraps the otelgorm plugin with slow query detection.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm registers otelgorm plus the timing and slow query
// callbacks on the given GORM instance. A no-op when tracing is disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	slowQuery := func(db *gorm.DB) {
		annotateSpan(db, p.config.SlowQueryThresh)
	}
	if err := registerQueryCallbacks(db, "otel_slow_query", markQueryStart, slowQuery); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// DBTracingCallback provides standalone GORM callbacks for query timing,
// usable without the otelgorm plugin.
type DBTracingCallback struct {
	slowQueryThresh time.Duration
}

// NewDBTracingCallback creates a new callback for tracking query timing.
func NewDBTracingCallback(slowQueryThresh time.Duration) *DBTracingCallback {
	return &DBTracingCallback{
		slowQueryThresh: slowQueryThresh,
	}
}

// BeforeCallback sets the query start time in context.
func (c *DBTracingCallback) BeforeCallback(db *gorm.DB) {
	markQueryStart(db)
}

// AfterCallback annotates the active span with query outcome and timing.
func (c *DBTracingCallback) AfterCallback(db *gorm.DB) {
	annotateSpan(db, c.slowQueryThresh)
}

// RegisterCallbacks registers the before and after callbacks on the GORM
// instance.
func (c *DBTracingCallback) RegisterCallbacks(db *gorm.DB) error {
	return registerQueryCallbacks(db, "otel_timing", c.BeforeCallback, c.AfterCallback)
}
