// Package scheduler runs the periodic stuck-candidate sweep and refresh
// token cleanup.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/metrics"
)

// StuckLister reports candidates that exceeded the stuck threshold.
type StuckLister interface {
	StuckCandidates(ctx context.Context) ([]*domain.Candidate, error)
}

// TokenPurger deletes expired refresh tokens.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// Report is the outcome of one sweep.
type Report struct {
	Stuck  []*domain.Candidate
	Purged int64
}

// Scheduler wraps robfig/cron and owns the sweep job.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	candidates StuckLister
	tokens     TokenPurger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// New creates a Scheduler that sweeps on the given cron spec, e.g. "@every 1h".
// tokens and m may be nil.
func New(spec string, candidates StuckLister, tokens TokenPurger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		spec:       spec,
		candidates: candidates,
		tokens:     tokens,
		metrics:    m,
		now:        time.Now,
	}
}

// Start registers the sweep and starts the cron loop. One sweep runs
// immediately so the stuck gauge is populated before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			slog.Error("scheduled sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweep %q: %w", s.spec, err)
	}

	s.cron.Start()
	slog.Info("scheduler started", "spec", s.spec)

	go func() {
		if _, err := s.RunOnce(ctx); err != nil {
			slog.Error("initial sweep failed", "error", err)
		}
	}()

	return nil
}

// Stop stops the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunOnce lists stuck candidates and purges expired refresh tokens. A
// failure of one step does not skip the other.
func (s *Scheduler) RunOnce(ctx context.Context) (Report, error) {
	var report Report
	var errs []error

	stuck, err := s.candidates.StuckCandidates(ctx)
	if err != nil {
		errs = append(errs, err)
	} else {
		report.Stuck = stuck
		now := s.now()
		for _, c := range stuck {
			slog.Warn("candidate stuck in stage",
				"candidate_id", c.ID,
				"stage", c.Stage,
				"stage_entered_at", c.StageEnteredAt,
				"hours_in_stage", int(now.Sub(c.StageEnteredAt).Hours()),
			)
		}
		slog.Info("stuck sweep complete", "stuck_count", len(stuck))
	}

	if s.tokens != nil {
		n, err := s.tokens.PurgeExpiredTokens(ctx)
		if err != nil {
			errs = append(errs, err)
		} else {
			report.Purged = n
			s.metrics.RefreshTokensPurged(n)
		}
	}

	return report, errors.Join(errs...)
}
