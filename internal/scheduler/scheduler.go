package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type stayCompleter interface {
	CompleteFinishedStays(ctx context.Context) (int, error)
}

// Scheduler periodically completes confirmed bookings whose stay has ended.
type Scheduler struct {
	bookingService stayCompleter
	interval       time.Duration
	logger         *zap.Logger
}

// New creates a Scheduler that completes finished stays every interval.
func New(
	bookingService stayCompleter,
	interval time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		bookingService: bookingService,
		interval:       interval,
		logger:         logger,
	}
}

// Start runs a pass immediately and then on every interval until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	completed, err := s.bookingService.CompleteFinishedStays(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("failed to complete finished stays", zap.Error(err))
		return
	}
	if completed > 0 {
		s.logger.Info("finished stays completed", zap.Int("count", completed))
	}
}
