package models

import "time"

// SyncEvent is a single audit entry for a synchronization attempt.
type SyncEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // BRIGHTNESS | COLOR | CONFIG_ERROR | DISPATCH_FAILED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// Sync event types.
const (
	SyncEventBrightness     = "BRIGHTNESS"
	SyncEventColor          = "COLOR"
	SyncEventConfigError    = "CONFIG_ERROR"
	SyncEventDispatchFailed = "DISPATCH_FAILED"
)
