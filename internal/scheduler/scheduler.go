package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-assistant/internal/weather"
)

// Refresher refetches the snapshot of the active location.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Pruner drops idle chat sessions.
type Pruner interface {
	Prune() int
}

// Scheduler periodically refreshes the dashboard snapshot and prunes idle sessions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	pruner    Pruner
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. Either job may be nil.
func New(interval, timeout time.Duration, refresher Refresher, pruner Pruner) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		pruner:    pruner,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.refresher == nil && s.pruner == nil {
		log.Println("scheduler: no jobs configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	// Startup already fetched the default location, so the first run waits one interval.
	_, err := s.scheduler.Every(minutes).Minutes().WaitForSchedule().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce runs every configured job a single time.
func (s *Scheduler) RunOnce() {
	log.Println("scheduler: running refresh job")

	if s.refresher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.refresher.Refresh(ctx)
		cancel()

		switch {
		case err == nil:
		case errors.Is(err, weather.ErrNoLocation), errors.Is(err, weather.ErrSuperseded):
			log.Printf("scheduler: refresh skipped: %v", err)
		default:
			log.Printf("scheduler: refresh failed: %v", err)
		}
	}

	if s.pruner != nil {
		if n := s.pruner.Prune(); n > 0 {
			log.Printf("scheduler: pruned %d idle chat sessions", n)
		}
	}

	log.Println("scheduler: completed refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
