package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ BiddingRepository = (*biddingRepository)(nil)

type biddingRepository struct {
	db *DB
}

func NewBiddingRepository(db *DB) BiddingRepository {
	return &biddingRepository{db: db}
}

func (r *biddingRepository) GetByNumber(number string) (*Bidding, error) {
	var b Bidding
	err := r.db.QueryRow(`
		SELECT id, number, agency, object, status, checked_at, created_at
		FROM biddings
		WHERE number = ?
	`, number).Scan(&b.ID, &b.Number, &b.Agency, &b.Object, &b.Status, &b.CheckedAt, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bidding: %w", err)
	}

	return &b, nil
}

func (r *biddingRepository) ListCheckedSince(since time.Time) ([]Bidding, error) {
	rows, err := r.db.Query(`
		SELECT id, number, agency, object, status, checked_at, created_at
		FROM biddings
		WHERE checked_at >= ?
		ORDER BY id DESC
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list biddings: %w", err)
	}
	defer rows.Close()

	var biddings []Bidding
	for rows.Next() {
		var b Bidding
		if err := rows.Scan(&b.ID, &b.Number, &b.Agency, &b.Object, &b.Status, &b.CheckedAt, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bidding: %w", err)
		}
		biddings = append(biddings, b)
	}

	return biddings, rows.Err()
}

func (r *biddingRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM biddings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count biddings: %w", err)
	}
	return count, nil
}

// ApplyChanges runs the whole batch in one transaction. A failure on any
// record rolls back every mutation of the run, so stored state is never
// left partially updated. The UNIQUE constraint on number is the
// last-resort guard against two overlapping runs inserting the same key.
func (r *biddingRepository) ApplyChanges(updates []BiddingUpdate, now time.Time) ([]Change, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now = now.UTC()
	var changes []Change

	for _, u := range updates {
		var id int64
		var status string
		err := tx.QueryRow(`SELECT id, status FROM biddings WHERE number = ?`, u.Number).Scan(&id, &status)

		switch {
		case err == sql.ErrNoRows:
			_, err = tx.Exec(`
				INSERT INTO biddings (number, agency, object, status, checked_at, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, u.Number, u.Agency, u.Object, u.Status, now, now)
			if err != nil {
				return nil, fmt.Errorf("failed to insert bidding %q: %w", u.Number, err)
			}
			changes = append(changes, Change{
				Kind:      ChangeNew,
				Number:    u.Number,
				Agency:    u.Agency,
				Object:    u.Object,
				NewStatus: u.Status,
			})

		case err != nil:
			return nil, fmt.Errorf("failed to look up bidding %q: %w", u.Number, err)

		// Strict string inequality, no normalization: the portal's status
		// strings are taken verbatim.
		case status != u.Status:
			_, err = tx.Exec(`
				UPDATE biddings SET status = ?, checked_at = ? WHERE id = ?
			`, u.Status, now, id)
			if err != nil {
				return nil, fmt.Errorf("failed to update bidding %q: %w", u.Number, err)
			}
			changes = append(changes, Change{
				Kind:      ChangeUpdated,
				Number:    u.Number,
				Agency:    u.Agency,
				Object:    u.Object,
				OldStatus: status,
				NewStatus: u.Status,
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reconciliation batch: %w", err)
	}

	return changes, nil
}

func (r *biddingRepository) DeleteAll() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM biddings`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete biddings: %w", err)
	}
	return res.RowsAffected()
}
