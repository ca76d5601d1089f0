package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"playback_lights/internal/logger"
	"playback_lights/internal/models"
)

// Setting keys, grouped by section.
const (
	SectionMain       = "govee-lights"
	SectionBrightness = "brightness-settings"

	KeyEnabled          = SectionMain + ".on-off"
	KeyAPIKey           = SectionMain + ".api-key"
	KeyDevices          = SectionMain + ".devices"
	KeyDarkenOnPause    = SectionBrightness + ".darkenPauseLights"
	KeyNormalBrightness = SectionBrightness + ".normalBrightness"
	KeyPausedBrightness = SectionBrightness + ".pausedBrightness"
)

// FieldKind is how a field is edited.
type FieldKind string

const (
	FieldToggle FieldKind = "toggle"
	FieldInput  FieldKind = "input"
)

// Field declares one option and the value the registrar seeds it with.
type Field struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Default any       `json:"default"`
	Secret  bool      `json:"secret,omitempty"`
}

// Section groups fields under one heading.
type Section struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Schema lists every user-configurable option.
func Schema() []Section {
	return []Section{
		{
			ID:    SectionMain,
			Title: "Setup Govee Lights",
			Fields: []Field{
				{Key: KeyEnabled, Label: "Extension on/off", Kind: FieldToggle, Default: true},
				{Key: KeyAPIKey, Label: "Govee API Key", Kind: FieldInput, Default: "", Secret: true},
				{Key: KeyDevices, Label: `Devices (JSON array of {"model": "", "id": ""})`, Kind: FieldInput, Default: `[{"model": "", "id": ""}]`},
			},
		},
		{
			ID:    SectionBrightness,
			Title: "Govee Brightness settings",
			Fields: []Field{
				{Key: KeyDarkenOnPause, Label: "Darken lights when paused", Kind: FieldToggle, Default: true},
				{Key: KeyNormalBrightness, Label: "Playing brightness", Kind: FieldInput, Default: "100"},
				{Key: KeyPausedBrightness, Label: "Paused brightness", Kind: FieldInput, Default: "75"},
			},
		},
	}
}

// LookupField finds a schema field by key.
func LookupField(key string) (Field, bool) {
	for _, s := range Schema() {
		for _, f := range s.Fields {
			if f.Key == key {
				return f, true
			}
		}
	}
	return Field{}, false
}

// Register seeds every field that has no stored value with its default.
// Stored user values are left alone.
func Register(ctx context.Context, w Writer, log *logger.Logger) error {
	for _, s := range Schema() {
		for _, f := range s.Fields {
			raw, err := Encode(f.Default)
			if err != nil {
				return fmt.Errorf("encode default for %q: %w", f.Key, err)
			}
			wrote, err := w.SetDefault(ctx, f.Key, raw)
			if err != nil {
				return fmt.Errorf("register %q: %w", f.Key, err)
			}
			if wrote && log != nil {
				log.Debugw("settings_default_registered", "key", f.Key)
			}
		}
	}
	return nil
}

// Validation errors for user writes.
var (
	ErrUnknownKey   = errors.New("unknown setting")
	ErrInvalidValue = errors.New("invalid setting value")
)

// Validate checks that raw is an acceptable value for key.
func Validate(key string, raw json.RawMessage) error {
	f, ok := LookupField(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidValue, key)
	}

	switch {
	case f.Kind == FieldToggle:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return fmt.Errorf("%w: %s must be a boolean", ErrInvalidValue, key)
		}
	case key == KeyNormalBrightness || key == KeyPausedBrightness:
		if _, err := brightness(raw, 0); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
	case key == KeyDevices:
		if !devicesDecode(raw) {
			return fmt.Errorf("%w: %s must be a JSON array of {\"model\", \"id\"}", ErrInvalidValue, key)
		}
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("%w: %s must be a string", ErrInvalidValue, key)
		}
	}
	return nil
}

func devicesDecode(raw json.RawMessage) bool {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		raw = json.RawMessage(text)
	}
	var devices []models.Device
	return json.Unmarshal(raw, &devices) == nil
}
