package service

import (
	"context"
	"encoding/json"

	"playback_lights/internal/artwork"
	"playback_lights/internal/logger"
	"playback_lights/internal/models"
	"playback_lights/internal/notify"
	"playback_lights/internal/repository"
	"playback_lights/internal/settings"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Sync accepts player events and reports the synchronization state.
// Run must be started once; stop it via context cancellation in main().
type Sync interface {
	Run(ctx context.Context)
	Submit(ctx context.Context, ev models.PlayerEvent, player *models.PlayerState) error
	Snapshot(ctx context.Context) (SyncSnapshot, error)
}

// Settings exposes the user-configurable options.
type Settings interface {
	Current(ctx context.Context) ([]SettingValue, error)
	Update(ctx context.Context, key string, value json.RawMessage) error
	Schema() []settings.Section
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.SyncEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Sync
	Settings
	EventLog
	Authorization
}

// Deps are the collaborators that do not live in the repository layer.
type Deps struct {
	Dispatcher Dispatcher
	Extractor  artwork.Extractor
	Notifier   notify.Notifier
	Log        *logger.Logger
	Auth       AuthConfig
	QueueSize  int
}

// NewService wires the repository layer and external collaborators into
// concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	player := NewPlayerTracker()
	engine := NewSyncEngine(
		settings.NewAccessor(repos.Settings, log.Named("settings")),
		deps.Dispatcher,
		deps.Extractor,
		player,
		repos.EventRepo,
		deps.Notifier,
		log.Named("sync"),
	)

	return &Service{
		Sync:          NewEventLoop(engine, player, deps.QueueSize, log.Named("loop")),
		Settings:      NewSettingsService(repos.Settings, log.Named("settings")),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, deps.Auth),
	}
}
