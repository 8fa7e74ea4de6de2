package tasks

import (
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeCheckRecords TaskType = "check_records"
)

// Task carries the bookkeeping shared by background tasks. Reconciliation
// runs are never retried: a failed scrape yields an empty run and the
// next scheduled tick tries again.
type Task struct {
	ID        string
	Type      TaskType
	StartedAt *time.Time
}

func NewTask(taskType TaskType) Task {
	return Task{
		ID:   uuid.New().String(),
		Type: taskType,
	}
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}
