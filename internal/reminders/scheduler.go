// Package reminders runs the daily deadline scan that nudges assignees
// about upcoming statutory filing dates.
package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ledgerline/practice-portal/practice-portal-backend/internal/deadlines"
	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

// DeadlineNotifier is the outbound side of the scheduler.
type DeadlineNotifier interface {
	NotifyDeadlineApproaching(ctx context.Context, w *workflow.Workflow, daysRemaining int) error
}

// Config controls when reminders fire.
type Config struct {
	// CronSpec is the scan schedule; defaults to a daily 07:00 run.
	CronSpec string
	// OffsetsDays are the days-remaining values that trigger a reminder,
	// so each workflow is nudged a fixed number of times, not daily.
	OffsetsDays []int
}

// DefaultConfig returns the standard reminder policy.
func DefaultConfig() Config {
	return Config{
		CronSpec:    "0 7 * * *",
		OffsetsDays: []int{30, 14, 7, 1, 0},
	}
}

// Scheduler periodically scans active workflows and dispatches deadline
// reminders.
type Scheduler struct {
	cron     *cron.Cron
	repo     workflow.Repository
	notifier DeadlineNotifier
	logger   *zap.Logger
	config   Config
	now      func() time.Time

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(repo workflow.Repository, notifier DeadlineNotifier, logger *zap.Logger, config Config) *Scheduler {
	if config.CronSpec == "" {
		config.CronSpec = DefaultConfig().CronSpec
	}
	if len(config.OffsetsDays) == 0 {
		config.OffsetsDays = DefaultConfig().OffsetsDays
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(deadlines.Location())),
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		config:   config,
		now:      time.Now,
	}
}

// Start registers the cron entry and begins scanning.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("reminder scheduler already running")
	}
	if _, err := s.cron.AddFunc(s.config.CronSpec, func() { s.Scan(ctx) }); err != nil {
		return fmt.Errorf("register reminder schedule %q: %w", s.config.CronSpec, err)
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("reminder scheduler started", zap.String("cron", s.config.CronSpec))
	return nil
}

// Stop halts the scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("reminder scheduler stopped")
}

// Scan dispatches reminders for every active workflow whose days remaining
// matches a configured offset. Exported so an admin endpoint can trigger an
// out-of-band run.
func (s *Scheduler) Scan(ctx context.Context) {
	today := s.now()
	maxOffset := 0
	for _, d := range s.config.OffsetsDays {
		if d > maxOffset {
			maxOffset = d
		}
	}

	due, err := s.repo.ListDueWithin(ctx, today.AddDate(0, 0, maxOffset+1))
	if err != nil {
		s.logger.Error("deadline scan failed", zap.Error(err))
		return
	}

	sent := 0
	for i := range due {
		w := &due[i]
		remaining := deadlines.DaysUntilDue(w.FilingDueDate, today)
		if !s.offsetMatches(remaining) {
			continue
		}
		if err := s.notifier.NotifyDeadlineApproaching(ctx, w, remaining); err != nil {
			s.logger.Warn("deadline reminder failed",
				zap.String("workflow_id", w.ID.String()),
				zap.Error(err))
			continue
		}
		sent++
	}
	s.logger.Info("deadline scan complete",
		zap.Int("workflows_due", len(due)),
		zap.Int("reminders_sent", sent))
}

func (s *Scheduler) offsetMatches(daysRemaining int) bool {
	if daysRemaining < 0 {
		// Overdue workflows are nudged on every scan until resolved.
		return true
	}
	for _, d := range s.config.OffsetsDays {
		if d == daysRemaining {
			return true
		}
	}
	return false
}
