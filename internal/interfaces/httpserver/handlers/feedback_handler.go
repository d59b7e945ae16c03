package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/domain/chat"
	"jan-server/services/assistant-api/internal/interfaces/httpserver/requests"
	"jan-server/services/assistant-api/internal/interfaces/httpserver/responses"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// FeedbackHandler exposes HTTP entrypoints for turn feedback.
type FeedbackHandler struct {
	service chat.Service
	log     zerolog.Logger
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(service chat.Service, log zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		log:     log.With().Str("handler", "feedback").Logger(),
	}
}

// Submit handles POST /v1/feedback
// @Summary Submit feedback
// @Description Records a rating against the turn behind a step and mirrors it onto the conversation record.
// @Tags Feedback
// @Accept json
// @Produce json
// @Param request body requests.SubmitFeedbackRequest true "Feedback request"
// @Success 200 {object} responses.FeedbackPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req requests.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "feedback-submit-bind")
		return
	}

	messageID, err := h.service.SubmitFeedback(c.Request.Context(), req.StepID, *req.Value, req.Comment)
	if err != nil {
		responses.HandleError(c, err, "failed to record feedback")
		return
	}

	c.JSON(http.StatusOK, responses.FeedbackPayload{MessageID: messageID})
}

// Retract handles DELETE /v1/feedback/:message_id
// @Summary Retract feedback
// @Description Removes the feedback entry for a message and resets the mirrored turn. Absence is not an error.
// @Tags Feedback
// @Produce json
// @Param message_id path string true "Message ID"
// @Success 200 {object} responses.RetractPayload
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/feedback/{message_id} [delete]
func (h *FeedbackHandler) Retract(c *gin.Context) {
	messageID := c.Param("message_id")

	removed, err := h.service.RetractFeedback(c.Request.Context(), messageID)
	if err != nil {
		responses.HandleError(c, err, "failed to retract feedback")
		return
	}

	c.JSON(http.StatusOK, responses.RetractPayload{Removed: removed})
}
