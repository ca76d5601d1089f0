package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"playback_lights/internal/artwork"
	"playback_lights/internal/color"
	"playback_lights/internal/govee"
	"playback_lights/internal/logger"
	"playback_lights/internal/models"
	"playback_lights/internal/notify"
	"playback_lights/internal/repository"
	"playback_lights/internal/settings"
)

// msgCheckSettings is shown to the user for every hard failure.
const msgCheckSettings = "Failed to change lights, please check your settings."

var (
	errMissingAPIKey = errors.New("missing API key")
	errNoDevices     = errors.New("no Govee devices configured")
)

// ConfigError aborts the current synchronization attempt.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// Dispatcher sends one capability to a set of devices.
type Dispatcher interface {
	Broadcast(ctx context.Context, apiKey string, devices []models.Device, capability models.Capability) govee.BroadcastResult
}

// PlayerSource exposes the current player snapshot.
type PlayerSource interface {
	Current() models.PlayerState
}

// SyncState is the last value attempted on all devices. It is a
// deduplication cache, not a record of what the lights actually show.
type SyncState struct {
	LastColor      *string `json:"last_color,omitempty"`
	LastBrightness *int    `json:"last_brightness,omitempty"`
}

func (s SyncState) clone() SyncState {
	var out SyncState
	if s.LastColor != nil {
		c := *s.LastColor
		out.LastColor = &c
	}
	if s.LastBrightness != nil {
		b := *s.LastBrightness
		out.LastBrightness = &b
	}
	return out
}

// SyncEngine turns player events into light commands. It is not safe for
// concurrent use; EventLoop is its only caller.
type SyncEngine struct {
	settings   *settings.Accessor
	dispatcher Dispatcher
	extractor  artwork.Extractor
	player     PlayerSource
	events     repository.EventRepo
	notifier   notify.Notifier
	log        *logger.Logger

	state SyncState
}

func NewSyncEngine(
	accessor *settings.Accessor,
	dispatcher Dispatcher,
	extractor artwork.Extractor,
	player PlayerSource,
	events repository.EventRepo,
	notifier notify.Notifier,
	log *logger.Logger,
) *SyncEngine {
	if log == nil {
		log = logger.Nop()
	}
	return &SyncEngine{
		settings:   accessor,
		dispatcher: dispatcher,
		extractor:  extractor,
		player:     player,
		events:     events,
		notifier:   notifier,
		log:        log,
	}
}

// State returns a copy of the cache.
func (e *SyncEngine) State() SyncState {
	return e.state.clone()
}

// HandleEvent runs one synchronization attempt. Failures are reported to the
// user and the log; the returned error is informational only.
func (e *SyncEngine) HandleEvent(ctx context.Context, ev models.PlayerEvent) error {
	switch ev.Kind {
	case models.EventTrackChanged:
		return e.handlePlayOrChange(ctx)
	case models.EventPlaybackToggled:
		if ev.IsPaused {
			return e.handlePause(ctx)
		}
		return e.handlePlayOrChange(ctx)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

// handlePlayOrChange restores the playing brightness and then matches the
// color to the artwork. Only the playing brightness is validated here.
func (e *SyncEngine) handlePlayOrChange(ctx context.Context) error {
	st, _ := settings.Load(ctx, e.settings)
	if !st.Enabled {
		return nil
	}
	if err := validate(st, st.NormalBrightnessErr); err != nil {
		e.reportConfigError(ctx, err)
		return err
	}

	if e.state.LastBrightness == nil || *e.state.LastBrightness != st.NormalBrightness {
		e.applyBrightness(ctx, st, st.NormalBrightness)
	}

	player := e.player.Current()
	if strings.HasPrefix(player.TrackURI, models.LocalTrackPrefix) {
		return nil
	}

	hex, ok := e.extractColor(ctx, player)
	if !ok {
		return nil
	}
	if e.state.LastColor != nil && *e.state.LastColor == hex {
		return nil
	}

	rgb, err := color.HexToInt(hex)
	if err != nil {
		e.log.Errorw("sync_color_encode_failed", "color", hex, "err", err)
		return nil
	}
	res := e.dispatcher.Broadcast(ctx, st.APIKey, st.Devices, govee.ColorCapability(rgb))
	e.state.LastColor = &hex
	e.afterBroadcast(ctx, models.SyncEventColor, "Set all lights to "+hex,
		map[string]any{"color": hex, "rgb": rgb, "track_uri": player.TrackURI}, res)
	return nil
}

// handlePause dims the lights to the paused brightness. Unlike a bare
// brightness change it still requires an API key and devices, so a
// misconfiguration is reported on pause too; a bad playing brightness does
// not block it.
func (e *SyncEngine) handlePause(ctx context.Context) error {
	st, _ := settings.Load(ctx, e.settings)
	if !st.Enabled || !st.DarkenOnPause {
		return nil
	}
	if err := validate(st, st.PausedBrightnessErr); err != nil {
		e.reportConfigError(ctx, err)
		return err
	}
	if e.state.LastBrightness != nil && *e.state.LastBrightness == st.PausedBrightness {
		return nil
	}
	e.applyBrightness(ctx, st, st.PausedBrightness)
	return nil
}

func (e *SyncEngine) applyBrightness(ctx context.Context, st models.Settings, brightness int) {
	res := e.dispatcher.Broadcast(ctx, st.APIKey, st.Devices, govee.BrightnessCapability(brightness))
	e.state.LastBrightness = &brightness
	e.afterBroadcast(ctx, models.SyncEventBrightness, fmt.Sprintf("Set brightness to %d", brightness),
		map[string]any{"brightness": brightness}, res)
}

// extractColor returns the hex color of the first candidate, or false when
// the track has no usable artwork.
func (e *SyncEngine) extractColor(ctx context.Context, player models.PlayerState) (string, bool) {
	if e.extractor == nil {
		return "", false
	}
	candidates, err := e.extractor.Extract(ctx, player.ArtworkURL)
	if err != nil {
		if errors.Is(err, artwork.ErrNoArtwork) {
			e.log.Debugw("sync_no_artwork", "track_uri", player.TrackURI)
		} else {
			e.log.Warnw("sync_color_extract_failed", "track_uri", player.TrackURI, "err", err)
		}
		return "", false
	}
	if len(candidates) == 0 {
		e.log.Debugw("sync_no_color", "track_uri", player.TrackURI)
		return "", false
	}
	return color.FromCandidate(candidates[0]), true
}

func (e *SyncEngine) afterBroadcast(ctx context.Context, typ, desc string, meta map[string]any, res govee.BroadcastResult) {
	e.log.Debugw("sync_broadcast", "type", typ, "attempted", res.Attempted, "failed", len(res.Failures))
	e.record(ctx, typ, desc, meta)

	if len(res.Failures) > 0 {
		failed := make([]string, 0, len(res.Failures))
		for _, f := range res.Failures {
			failed = append(failed, f.Device.ID)
		}
		e.record(ctx, models.SyncEventDispatchFailed,
			fmt.Sprintf("%d of %d devices failed", len(res.Failures), res.Attempted),
			map[string]any{"for": typ, "devices": failed})
	}
	if res.AllFailed() {
		e.log.Errorw("sync_broadcast_all_failed", "type", typ, "devices", res.Attempted)
		e.notify(msgCheckSettings, true)
	}

	if e.notifier != nil {
		e.notifier.Publish(notify.TypeSync, e.State())
	}
}

func (e *SyncEngine) reportConfigError(ctx context.Context, err error) {
	e.log.Errorw("sync_config_error", "err", err)
	e.record(ctx, models.SyncEventConfigError, err.Error(), nil)
	e.notify(msgCheckSettings, true)
}

func (e *SyncEngine) notify(text string, isError bool) {
	if e.notifier != nil {
		e.notifier.Notify(text, isError)
	}
}

func (e *SyncEngine) record(ctx context.Context, typ, desc string, meta map[string]any) {
	if e.events == nil {
		return
	}
	ev := models.SyncEvent{Type: typ, Description: desc}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := e.events.Append(ctx, ev); err != nil {
		e.log.Warnw("sync_event_append_failed", "type", typ, "err", err)
	}
}

// validate checks everything a dispatch needs. brightnessErr is the error of
// the one brightness value the caller is about to send.
func validate(st models.Settings, brightnessErr error) error {
	switch {
	case st.APIKey == "":
		return &ConfigError{Err: errMissingAPIKey}
	case brightnessErr != nil:
		return &ConfigError{Err: brightnessErr}
	case len(st.Devices) == 0:
		return &ConfigError{Err: errNoDevices}
	}
	return nil
}
