package scheduler

import (
	"context"
	"sync"
	"time"

	appreservation "github.com/farmeet/backend/internal/application/reservation"
	"go.uber.org/zap"
)

// ReservationSweeper periodically runs the reservation reconciliation sweeps:
// completing confirmed reservations whose event has started and expiring
// unpaid ones that aged out of their payment window.
type ReservationSweeper struct {
	service   *appreservation.SweepService
	logger    *zap.Logger
	config    ReservationSweeperConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// ReservationSweeperConfig holds configuration for the reservation sweeper
type ReservationSweeperConfig struct {
	// Enabled determines if the sweeper is active
	Enabled bool

	// Interval is how often both sweeps run
	Interval time.Duration

	// SweepTimeout is the maximum time for a single sweep pass
	SweepTimeout time.Duration
}

// DefaultReservationSweeperConfig returns default configuration
func DefaultReservationSweeperConfig() ReservationSweeperConfig {
	return ReservationSweeperConfig{
		Enabled:      true,
		Interval:     time.Minute,
		SweepTimeout: 5 * time.Minute,
	}
}

// NewReservationSweeper creates a new reservation sweeper
func NewReservationSweeper(
	service *appreservation.SweepService,
	logger *zap.Logger,
	config ReservationSweeperConfig,
) *ReservationSweeper {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.SweepTimeout <= 0 {
		config.SweepTimeout = 5 * time.Minute
	}
	return &ReservationSweeper{
		service: service,
		logger:  logger,
		config:  config,
	}
}

// Start starts the reservation sweeper
func (s *ReservationSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Reservation sweeper is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Reservation sweeper started",
		zap.Duration("interval", s.config.Interval),
	)

	return nil
}

// Stop gracefully stops the sweeper
func (s *ReservationSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	// Wait for the sweep loop to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reservation sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reservation sweeper stop timed out")
		return ctx.Err()
	}
}

// run executes the sweeps on a fixed interval until the context is cancelled
func (s *ReservationSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Reservation sweep loop stopping")
			return
		case <-ticker.C:
			s.executeSweep(ctx)
		}
	}
}

// executeSweep runs both reconciliation passes once
func (s *ReservationSweeper) executeSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	startTime := time.Now()

	completed, err := s.service.CompleteStarted(sweepCtx)
	if err != nil {
		s.logger.Error("Completion sweep failed",
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err),
		)
	}

	expired, err := s.service.ExpireUnpaid(sweepCtx)
	if err != nil {
		s.logger.Error("Expiry sweep failed",
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err),
		)
	}

	if completed > 0 || expired > 0 {
		s.logger.Info("Reservation sweep completed",
			zap.Duration("duration", time.Since(startTime)),
			zap.Int("completed", completed),
			zap.Int("expired", expired),
		)
	}
}

// TriggerImmediateSweep triggers an immediate reconciliation pass
func (s *ReservationSweeper) TriggerImmediateSweep(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate reservation sweep")

	// Run in a goroutine to not block
	go func() {
		defer s.wg.Done()
		s.executeSweep(ctx)
	}()

	return nil
}

// IsRunning returns whether the sweeper is running
func (s *ReservationSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
