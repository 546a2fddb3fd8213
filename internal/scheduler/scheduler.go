package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/pos/internal/config"
	"github.com/mamadbah2/pos/internal/domain/models"
	"github.com/mamadbah2/pos/internal/service/reporting"
)

// CatalogRefresher reloads the product catalog.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// DailySummarizer aggregates one day of sales.
type DailySummarizer interface {
	DailySummary(ctx context.Context, day time.Time) (models.DailyReport, error)
}

// ReportStore persists daily summaries.
type ReportStore interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron       *cron.Cron
	catalog    CatalogRefresher
	summarizer DailySummarizer
	reports    ReportStore
	cfg        config.Config
	location   *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

// NewScheduler creates a new scheduler instance. summarizer and reports are
// optional; the nightly report job is only registered when both are set.
func NewScheduler(cfg config.Config, catalog CatalogRefresher, summarizer DailySummarizer, reports ReportStore, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Reporting.Timezone, err)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(location)),
		catalog:    catalog,
		summarizer: summarizer,
		reports:    reports,
		cfg:        cfg,
		location:   location,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.Catalog.RefreshSchedule, s.refreshCatalog); err != nil {
		return fmt.Errorf("schedule catalog refresh: %w", err)
	}

	if s.summarizer != nil && s.reports != nil {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.saveDailyReport); err != nil {
			return fmt.Errorf("schedule daily report: %w", err)
		}
	} else {
		s.logger.Warn("sales journal or report store not configured, daily report disabled")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.catalog.Refresh(ctx); err != nil {
		s.logger.Error("scheduled catalog refresh failed", zap.Error(err))
	}
}

func (s *Scheduler) saveDailyReport() {
	s.logger.Info("generating daily report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.summarizer.DailySummary(ctx, s.now().In(s.location))
	if err != nil {
		s.logger.Error("failed to generate daily report", zap.Error(err))
		return
	}

	if err := s.reports.SaveDailyReport(ctx, report); err != nil {
		s.logger.Error("failed to save daily report", zap.Error(err))
		return
	}

	s.logger.Info("daily report saved", zap.String("summary", reporting.FormatSummary(report)))
}
