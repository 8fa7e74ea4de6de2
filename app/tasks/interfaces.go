package tasks

import (
	"time"

	"licitamonitor/app/portal"
)

// PortalSearcher is the slice of the portal client the reconciliation
// task needs.
type PortalSearcher interface {
	SearchByDate(date time.Time) ([]portal.RecordSummary, error)
}

// Notifier is the slice of the notification sender the tasks need.
type Notifier interface {
	Broadcast(text string)
}
