// Package config loads runtime settings from configs/config.yml and
// PLAYBACK_LIGHTS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PLAYBACK_LIGHTS"

// Config keys.
const (
	KeyPort            = "port"
	KeyDBPath          = "db.path"
	KeyLogLevel        = "log.level"
	KeyGoveeEndpoint   = "govee.endpoint"
	KeyGoveeTimeout    = "govee.timeout"
	KeyArtworkTimeout  = "artwork.timeout"
	KeyArtworkMaxBytes = "artwork.max_bytes"
	KeyAuthSigningKey  = "auth.signing_key"
	KeyAuthTokenTTL    = "auth.token_ttl"
	KeyEventsBuffer    = "events.buffer"
)

type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	GoveeEndpoint string
	GoveeTimeout  time.Duration

	ArtworkTimeout  time.Duration
	ArtworkMaxBytes int64

	AuthSigningKey string
	AuthTokenTTL   time.Duration

	EventsBuffer int
}

var defaults = map[string]any{
	KeyPort:            "8080",
	KeyDBPath:          "app.db",
	KeyLogLevel:        "info",
	KeyGoveeEndpoint:   "https://openapi.api.govee.com/router/api/v1/device/control",
	KeyGoveeTimeout:    10 * time.Second,
	KeyArtworkTimeout:  5 * time.Second,
	KeyArtworkMaxBytes: int64(8 << 20),
	KeyAuthTokenTTL:    time.Hour,
	KeyEventsBuffer:    32,
}

// Load reads config.yml from the given directories, if present, and applies
// environment overrides (db.path -> PLAYBACK_LIGHTS_DB_PATH).
func Load(paths ...string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	// registered so AutomaticEnv can resolve it without a file entry
	v.SetDefault(KeyAuthSigningKey, "")

	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Port:            v.GetString(KeyPort),
		DBPath:          v.GetString(KeyDBPath),
		LogLevel:        v.GetString(KeyLogLevel),
		GoveeEndpoint:   v.GetString(KeyGoveeEndpoint),
		GoveeTimeout:    v.GetDuration(KeyGoveeTimeout),
		ArtworkTimeout:  v.GetDuration(KeyArtworkTimeout),
		ArtworkMaxBytes: v.GetInt64(KeyArtworkMaxBytes),
		AuthSigningKey:  v.GetString(KeyAuthSigningKey),
		AuthTokenTTL:    v.GetDuration(KeyAuthTokenTTL),
		EventsBuffer:    v.GetInt(KeyEventsBuffer),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.Port == "":
		return errors.New("port is empty")
	case c.DBPath == "":
		return errors.New("db.path is empty")
	case c.GoveeTimeout <= 0 || c.ArtworkTimeout <= 0:
		return errors.New("timeouts must be positive")
	case c.ArtworkMaxBytes <= 0:
		return errors.New("artwork.max_bytes must be positive")
	}
	return nil
}
