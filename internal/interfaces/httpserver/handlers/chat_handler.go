package handlers

import (
	"encoding/base64"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/domain/chat"
	"jan-server/services/assistant-api/internal/domain/session"
	"jan-server/services/assistant-api/internal/domain/speech"
	"jan-server/services/assistant-api/internal/interfaces/httpserver/requests"
	"jan-server/services/assistant-api/internal/interfaces/httpserver/responses"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// ChatHandler exposes HTTP entrypoints for text and audio turns.
type ChatHandler struct {
	service     chat.Service
	synthesizer speech.Synthesizer
	sessions    session.Store
	log         zerolog.Logger
}

// NewChatHandler constructs the handler. The synthesizer may be nil; audio
// turns then skip the spoken reply.
func NewChatHandler(service chat.Service, synthesizer speech.Synthesizer, sessions session.Store, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service:     service,
		synthesizer: synthesizer,
		sessions:    sessions,
		log:         log.With().Str("handler", "chat").Logger(),
	}
}

// SendMessage handles POST /v1/chat/messages
// @Summary Send a text message
// @Description Answers one text turn and records it in both stores.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body requests.SendMessageRequest true "Message request"
// @Success 200 {object} chat.ConverseResult
// @Failure 400 {object} responses.ErrorResponse
// @Failure 502 {object} responses.ErrorResponse
// @Router /v1/chat/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req requests.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "chat-message-bind")
		return
	}

	result, err := h.service.Converse(c.Request.Context(), chat.ConverseParams{
		ConversationID: req.ConversationID,
		SessionID:      req.SessionID,
		Query:          req.Message,
		Language:       req.Language,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to answer message")
		return
	}

	c.JSON(http.StatusOK, result)
}

// SendAudio handles POST /v1/chat/audio
// @Summary Send an audio message
// @Description Transcribes the uploaded audio and answers the recognized text. With speak=true the reply is also synthesized.
// @Tags Chat
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Audio payload"
// @Param conversation_id formData string false "Conversation ID"
// @Param session_id formData string false "Session ID"
// @Param language formData string false "Language override"
// @Param speak query boolean false "Synthesize the reply"
// @Success 200 {object} responses.AudioChatPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 501 {object} responses.ErrorResponse
// @Router /v1/chat/audio [post]
func (h *ChatHandler) SendAudio(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "audio file is required", "chat-audio-missing")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "audio file is unreadable", "chat-audio-open")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "audio file is unreadable", "chat-audio-read")
		return
	}

	result, err := h.service.ConverseAudio(c.Request.Context(), chat.ConverseAudioParams{
		ConversationID: c.PostForm("conversation_id"),
		SessionID:      c.PostForm("session_id"),
		Audio:          audio,
		ContentType:    fileHeader.Header.Get("Content-Type"),
		Language:       c.PostForm("language"),
	})
	if err != nil {
		responses.HandleError(c, err, "failed to answer audio message")
		return
	}

	payload := responses.AudioChatPayload{ConverseAudioResult: *result}
	if speak, _ := strconv.ParseBool(c.Query("speak")); speak {
		payload.Audio = h.speakAnswer(c, result)
	}

	c.JSON(http.StatusOK, payload)
}

// speakAnswer synthesizes the answer with the session's voice. Synthesis is
// best effort; a failure leaves the audio field empty.
func (h *ChatHandler) speakAnswer(c *gin.Context, result *chat.ConverseAudioResult) string {
	if h.synthesizer == nil {
		return ""
	}

	voice := ""
	if sessionID := c.PostForm("session_id"); sessionID != "" && h.sessions != nil {
		if settings, err := h.sessions.Get(c.Request.Context(), sessionID); err == nil && settings != nil {
			voice = settings.Voice
		}
	}

	spoken, err := h.synthesizer.Synthesize(c.Request.Context(), result.Answer, voice)
	if err != nil {
		h.log.Warn().
			Err(err).
			Str("conversation_id", result.ConversationID).
			Msg("reply synthesis failed")
		return ""
	}
	return base64.StdEncoding.EncodeToString(spoken)
}
