package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which external event IDs have already been
// handled. Payment gateways deliver webhooks at-least-once, so every
// callback path checks here before acting.
type IdempotencyStore interface {
	// MarkProcessed records the event ID with a TTL. It reports true when
	// the ID was new, false when a previous delivery already claimed it.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event ID has been seen.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases the store's resources.
	Close() error
}

// IdempotencyConfig tunes webhook deduplication.
type IdempotencyConfig struct {
	// TTL bounds how long processed event IDs are retained.
	TTL time.Duration

	// Enabled turns deduplication off entirely when false.
	Enabled bool
}

// DefaultIdempotencyConfig retains processed IDs for a day, long past any
// gateway's retry window.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
