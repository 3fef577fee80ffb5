// Package worker runs the desk's background jobs on a cron schedule: the
// daily report export and, for the sqlite cart store, expired cart cleanup.
package worker

import (
	"context"
	"fmt"
	"time"

	"turfdesk/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// PurgeSchedule is how often expired carts are swept.
const PurgeSchedule = "@every 30m"

type ReportExporter interface {
	SaveReports(ctx context.Context, start, end string) ([]string, error)
}

type CartPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron    *cron.Cron
	reports ReportExporter
	purger  CartPurger
	retry   RetryPolicy
	logger  *zerolog.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewScheduler builds a scheduler. reports or purger may be nil to skip that
// job.
func NewScheduler(reports ReportExporter, purger CartPurger, retry RetryPolicy, loc *time.Location, logger *zerolog.Logger) *Scheduler {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 30 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 5 * time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		reports: reports,
		purger:  purger,
		retry:   retry,
		logger:  logger,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Start registers the jobs and runs them until ctx is cancelled. An empty
// reportSpec disables the report export.
func (s *Scheduler) Start(ctx context.Context, reportSpec string) error {
	if s.reports != nil && reportSpec != "" {
		if _, err := s.cron.AddFunc(reportSpec, func() { _, _ = s.ExportPreviousDay(ctx) }); err != nil {
			return fmt.Errorf("invalid report schedule %q: %w", reportSpec, err)
		}
		s.logger.Info().Str("schedule", reportSpec).Msg("Daily report export scheduled")
	}
	if s.purger != nil {
		if _, err := s.cron.AddFunc(PurgeSchedule, func() { s.PurgeCarts(ctx) }); err != nil {
			return fmt.Errorf("invalid purge schedule: %w", err)
		}
	}
	if len(s.cron.Entries()) == 0 {
		return nil
	}

	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		s.logger.Info().Msg("Scheduler stopped")
	}()
	return nil
}

// ExportPreviousDay saves yesterday's PDF and XLSX reports, retrying with
// backoff. Failures are logged and returned, never fatal.
func (s *Scheduler) ExportPreviousDay(ctx context.Context) ([]string, error) {
	day := s.now().AddDate(0, 0, -1).Format(models.DateLayout)

	var lastErr error
	for attempt := 1; attempt <= s.retry.MaxRetries; attempt++ {
		paths, err := s.reports.SaveReports(ctx, day, day)
		if err == nil {
			s.logger.Info().Str("day", day).Strs("files", paths).Msg("Daily report exported")
			return paths, nil
		}
		lastErr = err
		if attempt == s.retry.MaxRetries {
			break
		}

		delay := s.retry.NextDelay(attempt)
		s.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Str("day", day).Msg("Daily report export failed")
		if err := s.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	s.logger.Error().Err(lastErr).Str("day", day).Msg("Daily report export gave up")
	return nil, lastErr
}

func (s *Scheduler) PurgeCarts(ctx context.Context) {
	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Cart purge failed")
		return
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("Expired carts purged")
	}
}
