package store

import (
	"database/sql"
	"errors"
	"math"
	"strconv"
)

// Setting keys.
const (
	KeySensitivity = "sensitivity"
	KeyInputMode   = "input_mode"
	KeyEnabled     = "enabled"
)

// Sensitivity bounds for persisted settings.
const (
	MinSensitivity     = 0.5
	MaxSensitivity     = 3.0
	DefaultSensitivity = 1.0
)

// DefaultInputMode is the input mode stored when none was chosen.
const DefaultInputMode = "shell"

// Settings are the user-tunable values that survive restarts.
type Settings struct {
	Sensitivity float64 `json:"sensitivity"`
	InputMode   string  `json:"input_mode"`
	Enabled     bool    `json:"enabled"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Sensitivity: DefaultSensitivity,
		InputMode:   DefaultInputMode,
		Enabled:     true,
	}
}

// SettingsUpdate changes a subset of Settings; nil fields keep their
// current value.
type SettingsUpdate struct {
	Sensitivity *float64 `json:"sensitivity"`
	InputMode   *string  `json:"input_mode"`
	Enabled     *bool    `json:"enabled"`
}

// Apply returns s with the non-nil fields of u applied.
func (u SettingsUpdate) Apply(s Settings) Settings {
	if u.Sensitivity != nil {
		s.Sensitivity = *u.Sensitivity
	}
	if u.InputMode != nil {
		s.InputMode = *u.InputMode
	}
	if u.Enabled != nil {
		s.Enabled = *u.Enabled
	}
	return s
}

// NormalizeSensitivity clamps v to [MinSensitivity, MaxSensitivity] and
// rounds it to one decimal place. NaN becomes the default.
func NormalizeSensitivity(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultSensitivity
	}
	v = math.Max(MinSensitivity, math.Min(MaxSensitivity, v))
	return math.Round(v*10) / 10
}

// SettingsRepository reads and writes the settings table.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the raw value for key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Load returns the stored settings, filling missing or unparsable values
// with defaults.
func (r *SettingsRepository) Load() (Settings, error) {
	settings := DefaultSettings()

	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return settings, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, err
		}

		switch key {
		case KeySensitivity:
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				settings.Sensitivity = NormalizeSensitivity(v)
			}
		case KeyInputMode:
			if value != "" {
				settings.InputMode = value
			}
		case KeyEnabled:
			if v, err := strconv.ParseBool(value); err == nil {
				settings.Enabled = v
			}
		}
	}

	return settings, rows.Err()
}

// Save writes all settings in one transaction. Sensitivity is normalized
// before it is stored.
func (r *SettingsRepository) Save(settings Settings) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	values := map[string]string{
		KeySensitivity: strconv.FormatFloat(NormalizeSensitivity(settings.Sensitivity), 'f', 1, 64),
		KeyInputMode:   settings.InputMode,
		KeyEnabled:     strconv.FormatBool(settings.Enabled),
	}
	for key, value := range values {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}
