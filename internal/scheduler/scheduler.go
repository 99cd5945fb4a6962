package scheduler

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/shroomtrack/internal/config"
	"github.com/mamadbah2/shroomtrack/internal/metrics"
	"github.com/mamadbah2/shroomtrack/internal/service/legacysync"
)

// Mirror copies the document store into the legacy spreadsheet.
type Mirror interface {
	Mirror(ctx context.Context, src legacysync.Snapshotter) (legacysync.Summary, error)
}

// Summarizer renders the weekly finance summary.
type Summarizer interface {
	WeeklySummary(ctx context.Context, now time.Time) (string, error)
}

// Sender delivers the weekly summary.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// Jobs groups the collaborators of the scheduled jobs. Nil members disable
// the job that needs them.
type Jobs struct {
	Mirror   Mirror
	Snapshot legacysync.Snapshotter
	Summary  Summarizer
	Sender   Sender
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	jobs   Jobs
	cfg    config.Config
	logger *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.Config, jobs Jobs, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Reporting.Timezone, err)
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		jobs:   jobs,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start registers the enabled jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if s.jobs.Mirror != nil && s.jobs.Snapshot != nil {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.MirrorSchedule, s.mirror); err != nil {
			return fmt.Errorf("schedule mirror: %w", err)
		}
		s.logger.Info("mirror job scheduled", zap.String("spec", s.cfg.Reporting.MirrorSchedule))
	}

	if s.jobs.Summary != nil && s.jobs.Sender != nil && s.cfg.WhatsApp.ReportTo != "" {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.ReportSchedule, s.sendWeeklyReport); err != nil {
			return fmt.Errorf("schedule weekly report: %w", err)
		}
		s.logger.Info("weekly report scheduled", zap.String("spec", s.cfg.Reporting.ReportSchedule))
	} else {
		s.logger.Warn("weekly report disabled, whatsapp recipient not configured")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) mirror() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := s.jobs.Mirror.Mirror(ctx, s.jobs.Snapshot)
	if err != nil {
		metrics.JobRuns.WithLabelValues("mirror", "error").Inc()
		s.logger.Error("mirror failed", zap.Error(err))
		return
	}
	metrics.JobRuns.WithLabelValues("mirror", "ok").Inc()
	s.logger.Info("mirror completed", zap.Any("summary", summary))
}

func (s *Scheduler) sendWeeklyReport() {
	s.logger.Info("generating weekly report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.jobs.Summary.WeeklySummary(ctx, time.Now())
	if err != nil {
		metrics.JobRuns.WithLabelValues("weekly_report", "error").Inc()
		s.logger.Error("failed to generate weekly report", zap.Error(err))
		return
	}

	if _, err := s.jobs.Sender.SendText(ctx, s.cfg.WhatsApp.ReportTo, report); err != nil {
		metrics.JobRuns.WithLabelValues("weekly_report", "error").Inc()
		s.logger.Error("failed to send weekly report", zap.Error(err))
		return
	}
	metrics.JobRuns.WithLabelValues("weekly_report", "ok").Inc()
	s.logger.Info("weekly report sent successfully")
}
