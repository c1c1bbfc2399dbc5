// Package scheduler drives the dashboard refresh cycle at a fixed cadence.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chrissnell/canalwatch/internal/constants"
	"go.uber.org/zap"
)

// Cycle is one refresh.  Its outcome never affects scheduling.
type Cycle func(ctx context.Context)

// Stats counts what the scheduler has done since Run started
type Stats struct {
	Started   uint64    `json:"cyclesStarted"`
	Skipped   uint64    `json:"cyclesSkipped"`
	Running   bool      `json:"running"`
	LastStart time.Time `json:"lastStart"`
	Interval  string    `json:"interval"`
}

// Scheduler runs a cycle immediately and then once per interval.  A tick
// that arrives while a cycle is still running is skipped, not queued.
type Scheduler struct {
	interval time.Duration
	cycle    Cycle
	logger   *zap.SugaredLogger

	// ticks replaces the interval ticker when set
	ticks <-chan time.Time

	inFlight atomic.Bool
	started  atomic.Uint64
	skipped  atomic.Uint64

	mu        sync.Mutex
	lastStart time.Time
	wg        sync.WaitGroup
}

// New creates a scheduler.  A non-positive interval uses the default refresh interval.
func New(interval time.Duration, cycle Cycle, logger *zap.SugaredLogger) *Scheduler {
	if interval <= 0 {
		interval = constants.RefreshInterval
	}
	return &Scheduler{
		interval: interval,
		cycle:    cycle,
		logger:   logger,
	}
}

// WithTicks makes the scheduler fire on ticks instead of its own ticker
func (s *Scheduler) WithTicks(ticks <-chan time.Time) *Scheduler {
	s.ticks = ticks
	return s
}

// Run blocks until ctx is cancelled.  The first cycle runs to completion
// before the first tick is awaited.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Infof("starting refresh scheduler with interval %v", s.interval)

	if s.tryStart() {
		s.execute(ctx)
	}

	ticks := s.ticks
	if ticks == nil {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cancellation request received; stopping refresh scheduler")
			s.wg.Wait()
			return
		case <-ticks:
			if !s.tryStart() {
				s.skipped.Add(1)
				s.logger.Warn("previous refresh cycle still running; skipping this tick")
				continue
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.execute(ctx)
			}()
		}
	}
}

func (s *Scheduler) tryStart() bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		return false
	}
	s.started.Add(1)
	s.mu.Lock()
	s.lastStart = time.Now()
	s.mu.Unlock()
	return true
}

func (s *Scheduler) execute(ctx context.Context) {
	defer s.inFlight.Store(false)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("refresh cycle panicked: %v", r)
		}
	}()
	s.cycle(ctx)
}

// Stats returns the current counters
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	last := s.lastStart
	s.mu.Unlock()

	return Stats{
		Started:   s.started.Load(),
		Skipped:   s.skipped.Load(),
		Running:   s.inFlight.Load(),
		LastStart: last,
		Interval:  s.interval.String(),
	}
}
