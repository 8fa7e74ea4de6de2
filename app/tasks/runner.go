package tasks

import (
	"context"
	"sync"
	"time"

	"licitamonitor/app/database"
)

// Runner serializes reconciliation runs. The scheduler and the cron
// endpoint can both trigger a check; overlapping runs would race on the
// same records, so every run goes through the same mutex.
type Runner struct {
	searcher    PortalSearcher
	biddingRepo database.BiddingRepository
	notifier    Notifier
	mu          sync.Mutex
}

func NewRunner(searcher PortalSearcher, biddingRepo database.BiddingRepository, notifier Notifier) *Runner {
	return &Runner{
		searcher:    searcher,
		biddingRepo: biddingRepo,
		notifier:    notifier,
	}
}

// RunCheck executes one reconciliation run for date. Callers block until
// any in-flight run finishes.
func (r *Runner) RunCheck(ctx context.Context, date time.Time) (CheckResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task := NewCheckRecordsTask(date, r.searcher, r.biddingRepo, r.notifier)
	task.Start()

	return task.Execute(ctx)
}
