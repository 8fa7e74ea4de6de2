package database

import (
	"time"
)

// BiddingUpdate is a freshly scraped record summary handed to the
// reconciliation batch.
type BiddingUpdate struct {
	Number string
	Agency string
	Object string
	Status string
}

type ChangeKind string

const (
	ChangeNew     ChangeKind = "new"
	ChangeUpdated ChangeKind = "updated"
)

// Change describes one mutation applied by a reconciliation batch.
type Change struct {
	Kind      ChangeKind
	Number    string
	Agency    string
	Object    string
	OldStatus string
	NewStatus string
}

type BiddingRepository interface {
	GetByNumber(number string) (*Bidding, error)
	ListCheckedSince(since time.Time) ([]Bidding, error)
	GetCount() (int, error)

	// ApplyChanges reconciles the scraped batch against stored state in a
	// single transaction: unknown numbers are inserted, changed statuses
	// updated, identical statuses left untouched. On error the whole batch
	// rolls back.
	ApplyChanges(updates []BiddingUpdate, now time.Time) ([]Change, error)

	DeleteAll() (int64, error)
}

type SubscriberRepository interface {
	GetByChatID(chatID string) (*Subscriber, error)
	ListEnabled() ([]Subscriber, error)
	GetCount() (int, error)

	Insert(chatID string) error
	SetEnabled(chatID string, enabled bool) error
}
