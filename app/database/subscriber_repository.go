package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SubscriberRepository = (*subscriberRepository)(nil)

type subscriberRepository struct {
	db *DB
}

func NewSubscriberRepository(db *DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) GetByChatID(chatID string) (*Subscriber, error) {
	var s Subscriber
	err := r.db.QueryRow(`
		SELECT id, chat_id, notifications_enabled, created_at
		FROM subscribers
		WHERE chat_id = ?
	`, chatID).Scan(&s.ID, &s.ChatID, &s.NotificationsEnabled, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}

	return &s, nil
}

func (r *subscriberRepository) ListEnabled() ([]Subscriber, error) {
	rows, err := r.db.Query(`
		SELECT id, chat_id, notifications_enabled, created_at
		FROM subscribers
		WHERE notifications_enabled = TRUE
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []Subscriber
	for rows.Next() {
		var s Subscriber
		if err := rows.Scan(&s.ID, &s.ChatID, &s.NotificationsEnabled, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subscribers = append(subscribers, s)
	}

	return subscribers, rows.Err()
}

func (r *subscriberRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM subscribers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return count, nil
}

func (r *subscriberRepository) Insert(chatID string) error {
	_, err := r.db.Exec(`
		INSERT INTO subscribers (chat_id, notifications_enabled, created_at)
		VALUES (?, TRUE, ?)
	`, chatID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert subscriber: %w", err)
	}
	return nil
}

func (r *subscriberRepository) SetEnabled(chatID string, enabled bool) error {
	_, err := r.db.Exec(`
		UPDATE subscribers SET notifications_enabled = ? WHERE chat_id = ?
	`, enabled, chatID)
	if err != nil {
		return fmt.Errorf("failed to update subscriber: %w", err)
	}
	return nil
}
