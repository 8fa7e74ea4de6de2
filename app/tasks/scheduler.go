package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers the daily reconciliation run on a cron schedule,
// evaluated in the configured timezone.
type Scheduler struct {
	runner   *Runner
	cron     *cron.Cron
	schedule string
}

func NewScheduler(runner *Runner, schedule string) *Scheduler {
	return &Scheduler{
		runner:   runner,
		cron:     cron.New(cron.WithLocation(time.Local)),
		schedule: schedule,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.runDailyCheck)
	if err != nil {
		return err
	}

	s.cron.Start()
	slog.Info("Scheduler started", "schedule", s.schedule, "timezone", time.Local.String())

	return nil
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Debug("Scheduler stopped")
}

func (s *Scheduler) runDailyCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	today := time.Now().In(time.Local)
	if _, err := s.runner.RunCheck(ctx, today); err != nil {
		slog.Error("Scheduled check failed", "date", today.Format("02/01/2006"), "error", err)
	}
}
