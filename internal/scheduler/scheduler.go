package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gagesampsonn/barbershop/internal/config"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
	"github.com/gagesampsonn/barbershop/internal/metrics"
)

const (
	jobSnapshot = "daily_snapshot"
	jobWeekly   = "weekly_report"
)

// SalesReporter is the slice of the reporting service the jobs need.
type SalesReporter interface {
	Today() models.Date
	SalesSummary(ctx context.Context, start, end models.Date) (models.DailySalesSummary, error)
	PaymentSummary(ctx context.Context) (models.PaymentSummary, error)
}

// SnapshotStore persists closed-day snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot models.SalesSnapshot) error
}

// SnapshotSheet mirrors snapshots into a spreadsheet.
type SnapshotSheet interface {
	AppendSnapshot(ctx context.Context, snapshot models.SalesSnapshot) error
}

// WeeklyNotifier delivers the weekly roll-up.
type WeeklyNotifier interface {
	Enabled() bool
	SendWeekly(ctx context.Context, summary models.PaymentSummary) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ReportingConfig
	reports  SalesReporter
	store    SnapshotStore
	sheet    SnapshotSheet
	notifier WeeklyNotifier
	logger   *zap.Logger
	now      func() time.Time
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithSnapshotStore archives nightly snapshots.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(s *Scheduler) { s.store = store }
}

// WithSnapshotSheet appends nightly snapshots to a spreadsheet.
func WithSnapshotSheet(sheet SnapshotSheet) Option {
	return func(s *Scheduler) { s.sheet = sheet }
}

// WithNotifier enables the weekly report.
func WithNotifier(n WeeklyNotifier) Option {
	return func(s *Scheduler) { s.notifier = n }
}

// NewScheduler creates a new scheduler instance. Cron expressions are
// evaluated in the business zone.
func NewScheduler(cfg config.ReportingConfig, loc *time.Location, reports SalesReporter, logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}

	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		cfg:     cfg,
		reports: reports,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the jobs that have somewhere to deliver and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if s.store != nil || s.sheet != nil {
		if _, err := s.cron.AddFunc(s.cfg.SnapshotCron, s.wrap(jobSnapshot, s.RunSnapshot)); err != nil {
			return fmt.Errorf("schedule %s: %w", jobSnapshot, err)
		}
	}
	if s.notifier != nil && s.notifier.Enabled() {
		if _, err := s.cron.AddFunc(s.cfg.WeeklyCron, s.wrap(jobWeekly, s.RunWeeklyReport)); err != nil {
			return fmt.Errorf("schedule %s: %w", jobWeekly, err)
		}
	}

	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) wrap(job string, run func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
		defer cancel()

		started := s.now()
		if err := run(ctx); err != nil {
			metrics.IncJobRun(job, "error")
			s.logger.Error("scheduled job failed", zap.String("job", job), zap.Error(err))
			return
		}
		metrics.IncJobRun(job, "ok")
		s.logger.Info("scheduled job finished", zap.String("job", job), zap.Duration("elapsed", s.now().Sub(started)))
	}
}

// RunSnapshot summarizes yesterday and writes it to every configured sink.
// A failing sink does not stop the others.
func (s *Scheduler) RunSnapshot(ctx context.Context) error {
	yesterday := s.reports.Today().AddDays(-1)
	summary, err := s.reports.SalesSummary(ctx, yesterday, yesterday)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", yesterday, err)
	}
	snapshot := models.NewSalesSnapshot(summary, s.now().UTC())

	var errs []error
	if s.store != nil {
		if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	if s.sheet != nil {
		if err := s.sheet.AppendSnapshot(ctx, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunWeeklyReport sends the week-to-date summary to the owner.
func (s *Scheduler) RunWeeklyReport(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}
	summary, err := s.reports.PaymentSummary(ctx)
	if err != nil {
		return fmt.Errorf("build weekly summary: %w", err)
	}
	return s.notifier.SendWeekly(ctx, summary)
}
