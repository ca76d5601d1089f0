package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ctxUserID is the gin context key holding the authenticated user's ID.
const ctxUserID = "userId"

// Client-facing reasons for a 401. The token parser's own error is only logged.
var (
	errMissingAuthHeader = errors.New("missing Authorization header")
	errBadAuthHeader     = errors.New("invalid Authorization header format")
	errBadToken          = errors.New("invalid or expired token")
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || scheme != "Bearer" || token == "" {
		return "", errBadAuthHeader
	}
	return token, nil
}

// requireUser guards the player, settings and log routes. With no signing
// key configured ParseToken fails, so every request is rejected.
func (h *Handler) requireUser(c *gin.Context) {
	token, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		h.rejectUnauthorized(c, err, err)
		return
	}

	userID, err := h.services.ParseToken(token)
	if err != nil {
		h.rejectUnauthorized(c, errBadToken, err)
		return
	}

	c.Set(ctxUserID, userID)
	c.Next()
}

func (h *Handler) rejectUnauthorized(c *gin.Context, reason, cause error) {
	if h.log != nil {
		h.log.Infow("auth_rejected", "route", c.FullPath(), "method", c.Request.Method, "err", cause)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason.Error()})
}

// currentUserID returns the ID stored by requireUser, or 0 outside the
// protected group.
func currentUserID(c *gin.Context) int {
	return c.GetInt(ctxUserID)
}
