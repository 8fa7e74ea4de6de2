package notify

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"licitamonitor/app/database"
)

// Notifier delivers messages to Telegram subscribers through the Bot API,
// one sendMessage call per recipient, best-effort.
type Notifier struct {
	client         *resty.Client
	token          string
	subscriberRepo database.SubscriberRepository
}

// NewNotifier builds a notifier against apiURL (the Bot API base, split
// out for tests). An empty token disables delivery entirely.
func NewNotifier(apiURL, token string, subscriberRepo database.SubscriberRepository) *Notifier {
	client := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(10 * time.Second)

	if token == "" {
		slog.Warn("Telegram token not configured, notifications disabled")
	}

	return &Notifier{
		client:         client,
		token:          token,
		subscriberRepo: subscriberRepo,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send delivers one message to one chat.
func (n *Notifier) Send(chatID, text string) error {
	if n.token == "" {
		return nil
	}

	resp, err := n.client.R().
		SetBody(sendMessageRequest{ChatID: chatID, Text: text, ParseMode: "Markdown"}).
		Post(fmt.Sprintf("/bot%s/sendMessage", n.token))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram API error: %s", resp.Status())
	}

	return nil
}

// Broadcast delivers text to every subscriber with notifications enabled.
// Delivery failures are logged and skipped so one broken recipient never
// aborts the rest, and never bubbles up to the reconciliation that
// triggered the message.
func (n *Notifier) Broadcast(text string) {
	if n.token == "" {
		return
	}

	subscribers, err := n.subscriberRepo.ListEnabled()
	if err != nil {
		slog.Error("Failed to list subscribers for broadcast", "error", err)
		return
	}

	sent := 0
	for _, s := range subscribers {
		if err := n.Send(s.ChatID, text); err != nil {
			slog.Warn("Notification delivery failed", "chat_id", s.ChatID, "error", err)
			continue
		}
		sent++
	}

	slog.Info("Broadcast completed", "subscribers", len(subscribers), "sent", sent)
}
