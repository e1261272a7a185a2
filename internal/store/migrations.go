package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Action history - every click, long press and swipe the pipeline emitted
		`CREATE TABLE IF NOT EXISTS action_history (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('click', 'long-press', 'swipe')),
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			x2 INTEGER NOT NULL DEFAULT 0,
			y2 INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			timestamp_ms INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Recordings - named sequences of raw samples for replay
		`CREATE TABLE IF NOT EXISTS recordings (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sample_count INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Recording samples - one row per sample, JSON encoded
		`CREATE TABLE IF NOT EXISTS recording_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recording_id TEXT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			data TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_action_history_created_at ON action_history(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_recording_samples_recording_id ON recording_samples(recording_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
