package handlers

import (
	"context"
	"errors"
	"net/http"

	"playback_lights/internal/models"
	"playback_lights/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusAccepted = "accepted"

	errGetState        = "failed to load sync state"
	errSyncUnavailable = "sync loop is not running"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// PlayerEventRequest is a host notification about the player.
type PlayerEventRequest struct {
	// Event kind. Allowed: track_changed, playback_toggled
	Kind string `json:"kind" binding:"required" example:"playback_toggled"`
	// Only meaningful for playback_toggled
	IsPaused bool `json:"is_paused" example:"false"`
	// Current track; omit to keep the last reported one
	Track *TrackRequest `json:"track,omitempty"`
}

// TrackRequest is the player snapshot attached to an event.
type TrackRequest struct {
	URI        string `json:"uri" example:"spotify:track:4uLU6hMCjMI75M1A2tKUQC"`
	ArtworkURL string `json:"artwork_url,omitempty" example:"https://i.scdn.co/image/ab67616d0000b273"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Report a player event
// @Description  Queues a synchronization attempt. The lights are updated asynchronously.
// @Tags         player
// @Accept       json
// @Produce      json
// @Param        body  body   PlayerEventRequest  true  "Event payload"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/player/events [post]
// @Security     BearerAuth
func (h *Handler) postPlayerEvent(c *gin.Context) {
	var req PlayerEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	kind, err := models.ParseEventKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var player *models.PlayerState
	if req.Track != nil {
		player = &models.PlayerState{TrackURI: req.Track.URI, ArtworkURL: req.Track.ArtworkURL}
	}

	ev := models.PlayerEvent{Kind: kind, IsPaused: req.IsPaused}
	if err := h.services.Sync.Submit(c.Request.Context(), ev, player); err != nil {
		h.syncUnavailable(c, "player_event_submit_failed", err, "kind", kind)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusAccepted})
}

// @Summary      Get sync state
// @Description  Last values sent to every device and the tracked player snapshot
// @Tags         player
// @Produce      json
// @Success      200  {object}  service.SyncSnapshot
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/sync/state [get]
// @Security     BearerAuth
func (h *Handler) getSyncState(c *gin.Context) {
	snap, err := h.services.Sync.Snapshot(c.Request.Context())
	if err != nil {
		h.syncUnavailable(c, "sync_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) syncUnavailable(c *gin.Context, logKey string, err error, kv ...interface{}) {
	switch {
	case errors.Is(err, service.ErrLoopStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logAndJSONError(c, http.StatusServiceUnavailable, errSyncUnavailable, logKey, err, kv...)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, logKey, err, kv...)
	}
}
