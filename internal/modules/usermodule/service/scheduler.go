package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/ratings"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// cronLogger adapts hclog to the cron.Logger interface
type cronLogger struct {
	log hclog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}

// RatingScheduler periodically recalculates every movie's average rating.
// Specs carry a leading seconds field.
type RatingScheduler struct {
	db   *gorm.DB
	spec string
	cron *cron.Cron

	mu      sync.Mutex
	entry   cron.EntryID
	lastRun int
	lastErr error
}

// NewRatingScheduler creates a scheduler for spec. It does nothing until Start.
func NewRatingScheduler(db *gorm.DB, spec string) *RatingScheduler {
	log := cronLogger{log: logger.Named("scheduler")}
	return &RatingScheduler{
		db:   db,
		spec: spec,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
	}
}

// Start registers the job and starts the cron loop
func (s *RatingScheduler) Start() error {
	id, err := s.cron.AddFunc(s.spec, func() { s.Run(context.Background()) })
	if err != nil {
		return fmt.Errorf("invalid rating schedule %q: %w", s.spec, err)
	}

	s.mu.Lock()
	s.entry = id
	s.mu.Unlock()

	s.cron.Start()
	logger.Info("Rating scheduler started", "spec", s.spec)
	return nil
}

// Stop halts the loop and waits for a running job, or for ctx
func (s *RatingScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run recalculates every movie once and records the outcome
func (s *RatingScheduler) Run(ctx context.Context) {
	n, err := ratings.RecalculateAll(ctx, s.db)

	s.mu.Lock()
	s.lastRun, s.lastErr = n, err
	s.mu.Unlock()

	if err != nil {
		logger.Error("Rating recalculation failed", "error", err)
	}
}

// Status reports the next run and the outcome of the previous one
func (s *RatingScheduler) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"spec":         s.spec,
		"movies_rated": s.lastRun,
	}
	if s.entry != 0 {
		status["next_run"] = s.cron.Entry(s.entry).Next
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	return status
}
