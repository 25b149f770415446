package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fihircio/raikan-service/internal/config"
)

// Scheduler fires the job at configured wall-clock times: the daily routine
// every day and the weekly routine on one weekday. It polls the clock instead
// of sleeping until the target so that clock adjustments are picked up, and
// the clock is injectable so tests never wait on real time.
type Scheduler struct {
	job       *Job
	dailyAt   string
	weeklyAt  string
	weeklyDay time.Weekday
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger

	lastDaily  string
	lastWeekly string
}

func NewScheduler(job *Job, cfg *config.Cleanup, logger *slog.Logger) (*Scheduler, error) {
	day, err := parseWeekday(cfg.WeeklyDay)
	if err != nil {
		return nil, err
	}
	if err := validateClockTime(cfg.DailyAt); err != nil {
		return nil, fmt.Errorf("invalid daily_at: %w", err)
	}
	if err := validateClockTime(cfg.WeeklyAt); err != nil {
		return nil, fmt.Errorf("invalid weekly_at: %w", err)
	}

	return &Scheduler{
		job:       job,
		dailyAt:   cfg.DailyAt,
		weeklyAt:  cfg.WeeklyAt,
		weeklyDay: day,
		interval:  30 * time.Second,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// Run blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("cleanup scheduler started",
		slog.String("daily_at", s.dailyAt),
		slog.String("weekly_at", s.weeklyAt),
		slog.String("weekly_day", s.weeklyDay.String()))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cleanup scheduler shutting down")
			return
		case <-ticker.C:
			s.tick(ctx, s.now())
		}
	}
}

// tick runs whatever is due at time t. A routine fires at most once per day,
// however often the poll lands inside the scheduled minute.
func (s *Scheduler) tick(ctx context.Context, t time.Time) {
	day := t.Format("2006-01-02")

	if t.Format("15:04") == s.dailyAt && s.lastDaily != day {
		s.lastDaily = day
		s.job.RunDaily(ctx)
	}

	if t.Weekday() == s.weeklyDay && t.Format("15:04") == s.weeklyAt && s.lastWeekly != day {
		s.lastWeekly = day
		s.job.RunWeekly(ctx)
	}
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

func validateClockTime(s string) error {
	_, err := time.Parse("15:04", s)
	return err
}
