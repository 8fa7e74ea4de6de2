package database

import (
	"time"
)

type Bidding struct {
	ID        int64
	Number    string // Full bidding number, e.g. "001/2024" (unique business key)
	Agency    string
	Object    string
	Status    string // Free text, the portal defines no fixed vocabulary
	CheckedAt time.Time
	CreatedAt time.Time
}

type Subscriber struct {
	ID                   int64
	ChatID               string // Telegram chat identifier, digits only
	NotificationsEnabled bool
	CreatedAt            time.Time
}
