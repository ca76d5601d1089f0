package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"playback_lights/internal/models"
)

// Fallbacks used when a key is unset or unreadable.
const (
	DefaultNormalBrightness = 100
	DefaultPausedBrightness = 75
)

// Accepted brightness range.
const (
	MinBrightness = 0
	MaxBrightness = 100
)

// ErrInvalidBrightness marks a brightness value that is not a number.
var ErrInvalidBrightness = errors.New("invalid brightness")

// Load reads a fresh snapshot. Each brightness is read on its own: an unusable
// value is recorded in NormalBrightnessErr or PausedBrightnessErr and the
// returned error joins both. Every other problem falls back to defaults.
func Load(ctx context.Context, a *Accessor) (models.Settings, error) {
	s := models.Settings{
		Enabled:       Get(ctx, a, KeyEnabled, false),
		APIKey:        strings.TrimSpace(Get(ctx, a, KeyAPIKey, "")),
		Devices:       parseDevices(Get[json.RawMessage](ctx, a, KeyDevices, nil)),
		DarkenOnPause: Get(ctx, a, KeyDarkenOnPause, false),
	}

	s.NormalBrightness, s.NormalBrightnessErr = loadBrightness(ctx, a, KeyNormalBrightness, DefaultNormalBrightness)
	s.PausedBrightness, s.PausedBrightnessErr = loadBrightness(ctx, a, KeyPausedBrightness, DefaultPausedBrightness)
	return s, errors.Join(s.NormalBrightnessErr, s.PausedBrightnessErr)
}

func loadBrightness(ctx context.Context, a *Accessor, key string, def int) (int, error) {
	v, err := brightness(Get[json.RawMessage](ctx, a, key, nil), def)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// brightness accepts a JSON number or a numeric string in [MinBrightness, MaxBrightness].
func brightness(raw json.RawMessage, def int) (int, error) {
	if len(raw) == 0 {
		return def, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, ErrInvalidBrightness
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidBrightness, s)
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBrightness, f)
	}
	v := math.Round(f)
	if v < MinBrightness || v > MaxBrightness {
		return 0, fmt.Errorf("%w: %v is outside %d..%d", ErrInvalidBrightness, f, MinBrightness, MaxBrightness)
	}
	return int(v), nil
}

// parseDevices accepts a JSON array or a string holding one. Anything else is empty.
func parseDevices(raw json.RawMessage) []models.Device {
	if len(raw) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		raw = json.RawMessage(text)
	}

	var devices []models.Device
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil
	}

	out := devices[:0]
	for _, d := range devices {
		d.Model = strings.TrimSpace(d.Model)
		d.ID = strings.TrimSpace(d.ID)
		if d.Model == "" && d.ID == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}
