package notification

import (
	"context"
	"testing"
	"time"

	"github.com/farmeet/backend/internal/domain/catalog"
	"github.com/farmeet/backend/internal/domain/reservation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogEventPublisher_Publish(t *testing.T) {
	newEvent := func(t *testing.T) *reservation.ReservationCreatedEvent {
		experience, err := catalog.NewExperienceEvent(uuid.New(), uuid.New(), "Rice Planting",
			time.Now().Add(7*24*time.Hour), 10, decimal.NewFromInt(4000), nil)
		require.NoError(t, err)
		r, err := reservation.NewReservation(uuid.New(), experience, 2, 0, 0)
		require.NoError(t, err)
		return reservation.NewReservationCreatedEvent(r)
	}

	t.Run("logs the event envelope", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		publisher := NewLogEventPublisher(zap.New(core))

		event := newEvent(t)
		require.NoError(t, publisher.Publish(context.Background(), event))

		entries := logs.All()
		assert.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, event.EventID().String(), fields["event_id"])
		assert.Equal(t, reservation.EventTypeReservationCreated, fields["event_type"])
		assert.Equal(t, reservation.AggregateTypeReservation, fields["aggregate_type"])
		assert.Equal(t, event.AggregateID().String(), fields["aggregate_id"])
	})

	t.Run("nil logger is replaced with a no-op", func(t *testing.T) {
		publisher := NewLogEventPublisher(nil)

		assert.NotPanics(t, func() {
			_ = publisher.Publish(context.Background(), newEvent(t))
		})
	})
}
