// Package settings reads and declares the user-configurable options.
package settings

import (
	"context"
	"encoding/json"

	"playback_lights/internal/logger"
)

// Store is the key/value backend. Values are serialized {"value": ...} envelopes.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Writer is the part of the backend the registrar and the settings API need.
type Writer interface {
	Store
	Set(ctx context.Context, key, value string) error
	SetDefault(ctx context.Context, key, value string) (bool, error)
}

// Accessor performs typed reads that degrade to a default instead of failing.
type Accessor struct {
	store Store
	log   *logger.Logger
}

func NewAccessor(store Store, log *logger.Logger) *Accessor {
	return &Accessor{store: store, log: log}
}

type envelope[T any] struct {
	Value *T `json:"value"`
}

// Get returns the stored value for key decoded as T, or def when the key is
// missing, the store fails, or the payload does not decode.
func Get[T any](ctx context.Context, a *Accessor, key string, def T) T {
	if a == nil || a.store == nil {
		return def
	}
	raw, ok, err := a.store.Get(ctx, key)
	if err != nil {
		if a.log != nil {
			a.log.Warnw("settings_read_failed", "key", key, "err", err)
		}
		return def
	}
	if !ok || raw == "" {
		return def
	}

	var env envelope[T]
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.Value == nil {
		if a.log != nil {
			a.log.Debugw("settings_value_malformed", "key", key, "err", err)
		}
		return def
	}
	return *env.Value
}

// Encode wraps v in the stored envelope.
func Encode(v any) (string, error) {
	b, err := json.Marshal(struct {
		Value any `json:"value"`
	}{Value: v})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
