package tasks

import (
	"testing"
)

func TestScheduler_RejectsInvalidSpec(t *testing.T) {
	repo := newTestBiddingRepo(t)
	runner := NewRunner(&fakeSearcher{}, repo, &fakeNotifier{})

	scheduler := NewScheduler(runner, "not a cron spec")
	if err := scheduler.Start(); err == nil {
		scheduler.Stop()
		t.Fatal("Expected invalid cron spec to be rejected")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	repo := newTestBiddingRepo(t)
	runner := NewRunner(&fakeSearcher{}, repo, &fakeNotifier{})

	scheduler := NewScheduler(runner, "30 8 * * *")
	if err := scheduler.Start(); err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}
	scheduler.Stop()
}
