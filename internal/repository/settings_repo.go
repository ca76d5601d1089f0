package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SettingsSQLite struct {
	db *sql.DB
}

func NewSettingsSQLite(db *sql.DB) *SettingsSQLite {
	return &SettingsSQLite{db: db}
}

var _ SettingsRepo = (*SettingsSQLite)(nil)

const (
	selectSettingSQL = `SELECT value FROM settings WHERE key = ?`

	upsertSettingSQL = `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	insertDefaultSettingSQL = `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`

	selectAllSettingsSQL = `SELECT key, value FROM settings ORDER BY key`
)

// Get returns the stored envelope for key. ok is false when the key is unset.
func (r *SettingsSQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, selectSettingSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select setting %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes value for key, replacing any previous value.
func (r *SettingsSQLite) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertSettingSQL, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert setting %q: %w", key, err)
	}
	return nil
}

func (r *SettingsSQLite) SetDefault(ctx context.Context, key, value string) (bool, error) {
	res, err := r.db.ExecContext(ctx, insertDefaultSettingSQL, key, value, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("insert default setting %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for %q: %w", key, err)
	}
	return n > 0, nil
}

// All returns every stored key/value pair.
func (r *SettingsSQLite) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, selectAllSettingsSQL)
	if err != nil {
		return nil, fmt.Errorf("select settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
