package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/airmouse/internal/gesture"
)

// DefaultHistoryLimit is the number of entries returned when no limit is given.
const DefaultHistoryLimit = 50

// HistoryEntry is one emitted action.
type HistoryEntry struct {
	ID        string         `json:"id"`
	Action    gesture.Action `json:"action"`
	CreatedAt time.Time      `json:"created_at"`
}

// HistoryRepository records emitted actions.
type HistoryRepository struct {
	db *sql.DB
}

// History returns the action history repository for this store.
func (s *Store) History() *HistoryRepository {
	return &HistoryRepository{db: s.db}
}

// Record stores an action and returns the new entry.
func (r *HistoryRepository) Record(a gesture.Action) (*HistoryEntry, error) {
	entry := &HistoryEntry{
		ID:        uuid.New().String(),
		Action:    a,
		CreatedAt: time.Now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO action_history (id, kind, x, y, x2, y2, duration_ms, timestamp_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, string(a.Kind), a.X, a.Y, a.X2, a.Y2, a.DurationMs, a.TimestampMs, entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// List returns up to limit entries, newest first. A non-positive limit
// selects DefaultHistoryLimit.
func (r *HistoryRepository) List(limit int) ([]*HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := r.db.Query(
		`SELECT id, kind, x, y, x2, y2, duration_ms, timestamp_ms, created_at
		 FROM action_history ORDER BY rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*HistoryEntry{}
	for rows.Next() {
		e := &HistoryEntry{}
		var kind string
		a := &e.Action

		if err := rows.Scan(&e.ID, &kind, &a.X, &a.Y, &a.X2, &a.Y2, &a.DurationMs, &a.TimestampMs, &e.CreatedAt); err != nil {
			return nil, err
		}
		a.Kind = gesture.Kind(kind)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Count returns the number of recorded actions.
func (r *HistoryRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM action_history`).Scan(&n)
	return n, err
}

// Clear deletes all recorded actions.
func (r *HistoryRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM action_history`)
	return err
}
