package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultSweepSchedule = "@every 15m"

type expirer interface {
	Expire(ctx context.Context) (int, error)
}

// ExpirySweeper periodically expires stale pending escalations on a cron schedule.
type ExpirySweeper struct {
	target   expirer
	schedule string
	timeout  time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewExpirySweeper(target expirer, schedule string, logger *zap.Logger) (*ExpirySweeper, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", schedule, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ExpirySweeper{
		target:   target,
		schedule: schedule,
		timeout:  30 * time.Second,
		logger:   logger.With(zap.String("component", "expiry_sweeper")),
	}, nil
}

// Start schedules the sweep. Calling Start twice is a no-op.
func (s *ExpirySweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.schedule, s.Sweep); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()
	s.cron = c

	s.logger.Info("expiry sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop waits for a running sweep to finish.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("expiry sweeper stopped")
}

func (s *ExpirySweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	expired, err := s.target.Expire(ctx)
	if err != nil {
		s.logger.Error("expire escalations failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("expired stale escalations", zap.Int("count", expired))
	}
}
