package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ayusman/posecue/internal/cue"
)

// Setting keys
const (
	KeyNearThreshold = "cue.near"
	KeyFarThreshold  = "cue.far"
	KeyEnabled       = "app.enabled"
)

// SettingRepository stores key/value settings.
type SettingRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingRepository {
	return &SettingRepository{db: s.db}
}

// Get returns the value for key, or ErrNotFound.
func (r *SettingRepository) Get(key string) (string, error) {
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

const upsertSetting = `INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`

// Set stores value under key, replacing any previous value.
func (r *SettingRepository) Set(key, value string) error {
	_, err := r.db.Exec(upsertSetting, key, value)
	return err
}

// LoadThresholds returns the persisted thresholds, falling back to def for
// any value that was never saved.
func (r *SettingRepository) LoadThresholds(def cue.Thresholds) (cue.Thresholds, error) {
	t := def

	near, err := r.getFloat(KeyNearThreshold)
	switch {
	case err == nil:
		t.Near = near
	case !errors.Is(err, ErrNotFound):
		return def, err
	}

	far, err := r.getFloat(KeyFarThreshold)
	switch {
	case err == nil:
		t.Far = far
	case !errors.Is(err, ErrNotFound):
		return def, err
	}

	if err := t.Validate(); err != nil {
		return def, fmt.Errorf("stored thresholds: %w", err)
	}
	return t, nil
}

// SaveThresholds validates and persists t. Both values are written in one
// transaction so a failure never leaves half a pair behind.
func (r *SettingRepository) SaveThresholds(t cue.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(upsertSetting, KeyNearThreshold, strconv.FormatFloat(t.Near, 'f', -1, 64)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyNearThreshold, err)
	}
	if _, err := tx.Exec(upsertSetting, KeyFarThreshold, strconv.FormatFloat(t.Far, 'f', -1, 64)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyFarThreshold, err)
	}

	return tx.Commit()
}

// LoadEnabled returns the persisted enabled flag, or def if unset.
func (r *SettingRepository) LoadEnabled(def bool) (bool, error) {
	v, err := r.Get(KeyEnabled)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("parse %s: %w", KeyEnabled, err)
	}
	return b, nil
}

// SaveEnabled persists the enabled flag.
func (r *SettingRepository) SaveEnabled(enabled bool) error {
	return r.Set(KeyEnabled, strconv.FormatBool(enabled))
}

func (r *SettingRepository) getFloat(key string) (float64, error) {
	v, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}
