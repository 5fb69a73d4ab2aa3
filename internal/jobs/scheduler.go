package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"familyregistry/internal/metrics"
)

// SessionCleaner removes expired sessions and reports how many were removed
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Scheduler runs background maintenance for the registry
type Scheduler struct {
	scheduler gocron.Scheduler
	cleaners  []SessionCleaner
	metrics   *metrics.Metrics
	jobs      map[string]gocron.Job
}

// NewScheduler registers the session cleanup job to run every interval
func NewScheduler(interval time.Duration, m *metrics.Metrics, cleaners ...SessionCleaner) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{
		scheduler: scheduler,
		cleaners:  cleaners,
		metrics:   m,
		jobs:      make(map[string]gocron.Job),
	}

	job, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.CleanupSessions, context.Background()),
		gocron.WithName("session-cleanup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cleanup job: %w", err)
	}
	s.jobs["session-cleanup"] = job

	log.Printf("Registered %d background jobs", len(s.jobs))
	return s, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	log.Printf("Starting background job scheduler")
	s.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return s.scheduler.Shutdown()
}

// CleanupSessions runs every cleaner once and returns the total removed
func (s *Scheduler) CleanupSessions(ctx context.Context) int64 {
	var total int64
	for _, cleaner := range s.cleaners {
		removed, err := cleaner.CleanupExpired(ctx)
		if err != nil {
			log.Printf("Failed to clean up expired sessions: %v", err)
			continue
		}
		total += removed
	}
	s.metrics.AddSessionsExpired(total)
	if total > 0 {
		log.Printf("Removed %d expired sessions", total)
	}
	return total
}
