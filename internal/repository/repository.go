package repository

import (
	"context"
	"database/sql"
	"time"

	"playback_lights/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// SettingsRepo stores serialized settings envelopes by key.
type SettingsRepo interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetDefault stores value only if key has no value yet. Reports whether it wrote.
	SetDefault(ctx context.Context, key, value string) (bool, error)
	All(ctx context.Context) (map[string]string, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.SyncEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.SyncEvent, error)
}

type Repository struct {
	Settings  SettingsRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Settings:  NewSettingsSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
