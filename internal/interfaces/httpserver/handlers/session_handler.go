package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/domain/session"
	"jan-server/services/assistant-api/internal/interfaces/httpserver/requests"
	"jan-server/services/assistant-api/internal/interfaces/httpserver/responses"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// SessionHandler exposes HTTP entrypoints for session settings.
type SessionHandler struct {
	store session.Store
	log   zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(store session.Store, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		store: store,
		log:   log.With().Str("handler", "session").Logger(),
	}
}

// GetSettings handles GET /v1/sessions/:session_id/settings
// @Summary Get session settings
// @Description Returns the session's saved settings, or the defaults when nothing was saved.
// @Tags Sessions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} session.Settings
// @Failure 502 {object} responses.ErrorResponse
// @Router /v1/sessions/{session_id}/settings [get]
func (h *SessionHandler) GetSettings(c *gin.Context) {
	sessionID := c.Param("session_id")

	settings, err := h.store.Get(c.Request.Context(), sessionID)
	if err != nil {
		responses.HandleError(c, err, "failed to read session settings")
		return
	}
	if settings == nil {
		defaults := session.DefaultSettings()
		settings = &defaults
	}

	c.JSON(http.StatusOK, settings)
}

// PutSettings handles PUT /v1/sessions/:session_id/settings
// @Summary Save session settings
// @Description Replaces the session's settings.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param request body requests.PutSettingsRequest true "Settings"
// @Success 200 {object} session.Settings
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/sessions/{session_id}/settings [put]
func (h *SessionHandler) PutSettings(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req requests.PutSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "session-settings-bind")
		return
	}

	settings := session.Settings{
		Language: req.Language,
		Locales:  req.Locales,
		Voice:    req.Voice,
	}
	if err := h.store.Put(c.Request.Context(), sessionID, settings); err != nil {
		responses.HandleError(c, err, "failed to save session settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}
