package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"licitamonitor/app/database"
	"licitamonitor/app/notify"
	"licitamonitor/app/portal"
)

// CheckResult summarizes a reconciliation run.
type CheckResult struct {
	Scraped int
	New     int
	Updated int
}

type CheckRecordsTask struct {
	Task
	Date        time.Time
	searcher    PortalSearcher
	biddingRepo database.BiddingRepository
	notifier    Notifier
}

func NewCheckRecordsTask(date time.Time, searcher PortalSearcher, biddingRepo database.BiddingRepository, notifier Notifier) *CheckRecordsTask {
	return &CheckRecordsTask{
		Task:        NewTask(TaskTypeCheckRecords),
		Date:        date,
		searcher:    searcher,
		biddingRepo: biddingRepo,
		notifier:    notifier,
	}
}

// Execute scrapes the portal for the task's date, reconciles the results
// against stored records in a single transaction, and broadcasts one
// notification per change. Notifications go out only after the commit, so
// a delivery failure can never undo a stored change.
func (t *CheckRecordsTask) Execute(ctx context.Context) (CheckResult, error) {
	select {
	case <-ctx.Done():
		return CheckResult{}, ctx.Err()
	default:
	}

	records, err := t.searcher.SearchByDate(t.Date)
	if err != nil {
		if errors.Is(err, portal.ErrPortalTimeout) {
			slog.Warn("Portal search timed out, treating as empty result", "date", t.Date.Format("02/01/2006"))
			return CheckResult{}, nil
		}
		return CheckResult{}, fmt.Errorf("failed to search portal: %w", err)
	}

	updates := make([]database.BiddingUpdate, 0, len(records))
	for _, r := range records {
		updates = append(updates, database.BiddingUpdate{
			Number: r.Number,
			Agency: r.Agency,
			Object: r.Object,
			Status: r.Status,
		})
	}

	changes, err := t.biddingRepo.ApplyChanges(updates, time.Now().UTC())
	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to apply changes: %w", err)
	}

	result := CheckResult{Scraped: len(records)}
	for _, c := range changes {
		switch c.Kind {
		case database.ChangeNew:
			result.New++
		case database.ChangeUpdated:
			result.Updated++
		}
		t.notifier.Broadcast(notify.FormatChange(c))
	}

	slog.Info("Task completed",
		"type", "CheckRecords",
		"date", t.Date.Format("02/01/2006"),
		"duration", t.GetDuration(),
		"scraped", result.Scraped,
		"new", result.New,
		"updated", result.Updated)

	return result, nil
}
