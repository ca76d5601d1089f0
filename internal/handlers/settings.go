package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"playback_lights/internal/settings"

	"github.com/gin-gonic/gin"
)

const errLoadSettings = "failed to load settings"

// SettingRequest is the payload for updating one option.
type SettingRequest struct {
	// Any JSON value; toggles take booleans, everything else strings
	Value json.RawMessage `json:"value" swaggertype:"object"`
}

// @Summary      List settings
// @Description  Current value of every option. The API key is masked.
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "settings"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/settings [get]
// @Security     BearerAuth
func (h *Handler) getSettings(c *gin.Context) {
	vals, err := h.services.Settings.Current(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadSettings, "settings_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": vals})
}

// @Summary      Settings schema
// @Tags         settings
// @Produce      json
// @Success      200  {array}   settings.Section
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/settings/schema [get]
// @Security     BearerAuth
func (h *Handler) getSettingsSchema(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Settings.Schema())
}

// @Summary      Update a setting
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        key   path   string          true  "Setting key"  example(brightness-settings.pausedBrightness)
// @Param        body  body   SettingRequest  true  "New value"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/settings/{key} [put]
// @Security     BearerAuth
func (h *Handler) putSetting(c *gin.Context) {
	key := c.Param("key")

	var req SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	err := h.services.Settings.Update(c.Request.Context(), key, req.Value)
	switch {
	case err == nil:
		if h.log != nil {
			h.log.Infow("setting_updated", "key", key, "user_id", currentUserID(c))
		}
		c.JSON(http.StatusOK, gin.H{"status": statusOK, "key": key})
	case errors.Is(err, settings.ErrUnknownKey):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, settings.ErrInvalidValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to store setting", "settings_update_failed", err, "key", key)
	}
}
