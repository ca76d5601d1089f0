package service

import (
	"context"
	"encoding/json"
	"fmt"

	"playback_lights/internal/logger"
	"playback_lights/internal/repository"
	"playback_lights/internal/settings"
)

const maskedSecret = "****"

// SettingsService backs the settings API. Writes are validated against the
// schema; reads mask secret fields.
type SettingsService struct {
	repo repository.SettingsRepo
	log  *logger.Logger
}

func NewSettingsService(repo repository.SettingsRepo, log *logger.Logger) *SettingsService {
	if log == nil {
		log = logger.Nop()
	}
	return &SettingsService{repo: repo, log: log}
}

// Current lists every schema field with its stored value, or nil when unset.
func (s *SettingsService) Current(ctx context.Context) ([]SettingValue, error) {
	stored, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	var out []SettingValue
	for _, sec := range settings.Schema() {
		for _, f := range sec.Fields {
			v := SettingValue{Key: f.Key, Secret: f.Secret}
			if raw, ok := stored[f.Key]; ok {
				v.Value = decodeStored(raw)
			}
			if f.Secret {
				v.Value = mask(v.Value)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// Update validates and stores one value.
func (s *SettingsService) Update(ctx context.Context, key string, value json.RawMessage) error {
	if err := settings.Validate(key, value); err != nil {
		return err
	}
	raw, err := settings.Encode(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := s.repo.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}
	s.log.Infow("settings_updated", "key", key)
	return nil
}

func (s *SettingsService) Schema() []settings.Section {
	return settings.Schema()
}

func decodeStored(raw string) any {
	var env struct {
		Value any `json:"value"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil
	}
	return env.Value
}

// mask keeps the last four characters of a secret string.
func mask(v any) any {
	s, ok := v.(string)
	if !ok || s == "" {
		return v
	}
	if len(s) <= 4 {
		return maskedSecret
	}
	return maskedSecret + s[len(s)-4:]
}
