package models

import "fmt"

// EventKind tags a player lifecycle event.
type EventKind string

const (
	EventTrackChanged    EventKind = "track_changed"
	EventPlaybackToggled EventKind = "playback_toggled"
)

// LocalTrackPrefix marks tracks played from local files.
const LocalTrackPrefix = "spotify:local:"

// PlayerEvent is the validated form of a host notification.
// IsPaused is only meaningful for EventPlaybackToggled.
type PlayerEvent struct {
	Kind     EventKind `json:"kind"`
	IsPaused bool      `json:"is_paused"`
}

// ParseEventKind validates a raw kind string.
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case EventTrackChanged, EventPlaybackToggled:
		return k, nil
	default:
		return "", fmt.Errorf("unknown event kind %q", s)
	}
}

// PlayerState is the read-only player snapshot the engine works from.
type PlayerState struct {
	TrackURI   string `json:"track_uri"`
	ArtworkURL string `json:"artwork_url,omitempty"`
}
