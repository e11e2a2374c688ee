package sync

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Scheduler drives sync cycles on a fixed cadence. Cycles never overlap: a
// tick that arrives while a cycle is still running is skipped, not queued.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	hourUTC  int // -1 = every tick; otherwise once daily at this hour
	logger   *slog.Logger

	running atomic.Bool
	lastDay atomic.Value // string yyyy-mm-dd of the last fixed-hour run
}

// NewScheduler creates a scheduler. interval is the tick cadence; when
// hourUTC is >= 0 a cycle runs at most once per day, on the first tick at
// or after that hour.
func NewScheduler(engine *Engine, interval time.Duration, hourUTC int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine:   engine,
		interval: interval,
		hourUTC:  hourUTC,
		logger:   logger,
	}
}

// Start runs the scheduler loop. Blocks until ctx is cancelled. Intended to
// be called with `go`. A zero interval disables scheduling entirely.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Sync scheduler disabled")
		return
	}

	s.logger.Info("Sync scheduler started", "interval", s.interval, "hour_utc", s.hourUTC)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if !s.due(now.UTC()) {
				continue
			}
			if _, ok := s.TryRun(ctx); !ok {
				s.logger.Warn("Previous sync cycle still running, skipping tick")
			}
		case <-ctx.Done():
			s.logger.Info("Sync scheduler stopped")
			return
		}
	}
}

// TryRun executes one cycle unless another is already in flight. The second
// return is false when a cycle was running and nothing was started. Used by
// both the ticker loop and the manual-trigger API endpoint.
func (s *Scheduler) TryRun(ctx context.Context) (CycleResult, bool) {
	if !s.running.CompareAndSwap(false, true) {
		return CycleResult{}, false
	}
	defer s.running.Store(false)
	return s.engine.Run(ctx), true
}

// Running reports whether a cycle is currently in flight.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// due decides whether a tick should trigger a cycle. With a fixed hour
// configured, the first tick at or after that hour wins and the rest of the
// day is quiet.
func (s *Scheduler) due(now time.Time) bool {
	if s.hourUTC < 0 {
		return true
	}
	if now.Hour() < s.hourUTC {
		return false
	}
	today := now.Format("2006-01-02")
	if last, _ := s.lastDay.Load().(string); last == today {
		return false
	}
	s.lastDay.Store(today)
	return true
}
