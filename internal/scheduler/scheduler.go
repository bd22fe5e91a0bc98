// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
)

// DefaultStreakRefreshAt is used when no refresh time is configured.
const DefaultStreakRefreshAt = "00:05"

// runTimeout bounds a single refresh run.
const runTimeout = 10 * time.Minute

// StreakRefresher recomputes cached streak values.
type StreakRefresher interface {
	RefreshAllStreakCaches(ctx context.Context) (int, error)
}

// Scheduler owns the gocron scheduler and its jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher StreakRefresher
	refreshAt string
	logger    *slog.Logger
}

// New creates a Scheduler that refreshes streak caches once a day at
// refreshAt (HH:MM, UTC). Cached streaks only change when a user studies,
// so the nightly run is what lets a missed day show up in the cache.
func New(refresher StreakRefresher, refreshAt string, logger *slog.Logger) (*Scheduler, error) {
	if refresher == nil {
		return nil, errors.New("streak refresher cannot be nil")
	}
	if refreshAt == "" {
		refreshAt = DefaultStreakRefreshAt
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		refreshAt: refreshAt,
		logger:    logger.With(slog.String("component", "scheduler")),
	}, nil
}

// Start registers the jobs and runs them in the background.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.refreshAt).SingletonMode().Do(s.refreshStreaks)
	if err != nil {
		return fmt.Errorf("failed to schedule streak refresh at %q: %w", s.refreshAt, err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started",
		slog.String("streak_refresh_at", s.refreshAt),
		slog.Int("jobs", len(s.scheduler.Jobs())))
	return nil
}

// Stop halts the scheduler. A running job is allowed to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("scheduler stopped")
}

// NextRun returns when the streak refresh runs next, or the zero time if
// the scheduler has not been started.
func (s *Scheduler) NextRun() time.Time {
	jobs := s.scheduler.Jobs()
	if len(jobs) == 0 {
		return time.Time{}
	}
	return jobs[0].NextRun()
}

func (s *Scheduler) refreshStreaks() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	ctx = logger.WithLogger(ctx, s.logger)

	start := time.Now()
	n, err := s.refresher.RefreshAllStreakCaches(ctx)
	if err != nil {
		s.logger.Error("streak refresh failed",
			slog.String("error", err.Error()),
			slog.Int("users_refreshed", n))
		return
	}
	s.logger.Info("streak refresh finished",
		slog.Int("users_refreshed", n),
		slog.Duration("duration", time.Since(start)))
}
