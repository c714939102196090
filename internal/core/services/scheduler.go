package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/marketbrief/internal/core/domain"
	"github.com/custodia-labs/marketbrief/internal/core/ports/driving"
	"github.com/custodia-labs/marketbrief/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// minInterval guards against a zero or negative ticker period.
const minInterval = time.Minute

// Scheduler triggers pipeline passes on a fixed interval.
// It is a pure core service with no external control API.
type Scheduler struct {
	config domain.ScheduleSettings
	runner driving.PipelineRunner

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}

	// wg tracks in-flight passes. Only the loop goroutine adds to or
	// waits on it.
	wg sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(config domain.ScheduleSettings, runner driving.PipelineRunner) *Scheduler {
	if config.Interval < minInterval {
		config.Interval = minInterval
	}
	return &Scheduler{
		config: config,
		runner: runner,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	stopCh := make(chan struct{})
	done := make(chan struct{})
	s.stopCh, s.done = stopCh, done
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.stopCh == stopCh {
			s.running = false
		}
		s.mu.Unlock()
		close(done)
	}()

	logger.Info("Scheduler started, interval %s", s.config.Interval)
	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler and waits for an in-flight pass.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()

	<-done

	return nil
}

// run is the main scheduler loop. It waits for in-flight passes before
// returning.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	if s.config.RunOnStart {
		s.trigger(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			s.wg.Wait()
			return nil
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

// trigger starts one pass in the background. Overlapping passes are
// skipped by the runner itself.
func (s *Scheduler) trigger(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		report, err := s.runner.RunOnce(ctx)
		switch {
		case errors.Is(err, domain.ErrRunInProgress):
			logger.Info("Scheduler: previous pass still running, skipping tick")
		case err != nil:
			logger.Warn("Scheduler: pass %s failed: %v", report.RunID, err)
		default:
			logger.Info("Scheduler: pass %s delivered %d items", report.RunID, report.Delivered)
		}
	}()
}
