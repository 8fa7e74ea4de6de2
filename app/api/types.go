package api

import (
	"context"
	"time"

	"licitamonitor/app/database"
	"licitamonitor/app/portal"
	"licitamonitor/app/tasks"
)

// DetailFetcher is the slice of the portal client the details page needs.
type DetailFetcher interface {
	FetchDetail(number string) (portal.DetailSnapshot, error)
}

// CheckRunner triggers a reconciliation run for a given date.
type CheckRunner interface {
	RunCheck(ctx context.Context, date time.Time) (tasks.CheckResult, error)
}

// MessageSender delivers Telegram messages to one or all subscribers.
type MessageSender interface {
	Send(chatID string, text string) error
	Broadcast(text string)
}

type Handler struct {
	biddingRepo    database.BiddingRepository
	subscriberRepo database.SubscriberRepository
	fetcher        DetailFetcher
	runner         CheckRunner
	sender         MessageSender
}
