package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/airmouse/internal/detector"
)

// Recording is a named sequence of raw samples that can be replayed.
// Samples is only populated by Get.
type Recording struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	SampleCount int               `json:"sample_count"`
	DurationMs  int64             `json:"duration_ms"`
	CreatedAt   time.Time         `json:"created_at"`
	Samples     []detector.Sample `json:"samples,omitempty"`
}

// RecordingRepository provides CRUD operations for recordings.
type RecordingRepository struct {
	db *sql.DB
}

// Recordings returns the recording repository for this store.
func (s *Store) Recordings() *RecordingRepository {
	return &RecordingRepository{db: s.db}
}

// Create stores samples under a new recording in a single transaction.
func (r *RecordingRepository) Create(name string, samples []detector.Sample) (*Recording, error) {
	if len(samples) == 0 {
		return nil, errors.New("recording has no samples")
	}

	rec := &Recording{
		ID:          uuid.New().String(),
		Name:        name,
		SampleCount: len(samples),
		DurationMs:  samples[len(samples)-1].TimestampMs - samples[0].TimestampMs,
		CreatedAt:   time.Now(),
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO recordings (id, name, sample_count, duration_ms, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.SampleCount, rec.DurationMs, rec.CreatedAt,
	); err != nil {
		return nil, err
	}

	stmt, err := tx.Prepare(`INSERT INTO recording_samples (recording_id, sequence, data) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for i, s := range samples {
		data, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("failed to encode sample %d: %w", i, err)
		}
		if _, err := stmt.Exec(rec.ID, i, string(data)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Get returns a recording with its samples in order.
func (r *RecordingRepository) Get(id string) (*Recording, error) {
	rec := &Recording{}
	err := r.db.QueryRow(
		`SELECT id, name, sample_count, duration_ms, created_at FROM recordings WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.Name, &rec.SampleCount, &rec.DurationMs, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT data FROM recording_samples WHERE recording_id = ? ORDER BY sequence`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rec.Samples = make([]detector.Sample, 0, rec.SampleCount)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var s detector.Sample
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return nil, fmt.Errorf("failed to decode sample: %w", err)
		}
		rec.Samples = append(rec.Samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rec, nil
}

// List returns all recordings without their samples, newest first.
func (r *RecordingRepository) List() ([]*Recording, error) {
	rows, err := r.db.Query(
		`SELECT id, name, sample_count, duration_ms, created_at FROM recordings ORDER BY rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recordings := []*Recording{}
	for rows.Next() {
		rec := &Recording{}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.SampleCount, &rec.DurationMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recordings, nil
}

// Delete removes a recording and its samples.
func (r *RecordingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}
