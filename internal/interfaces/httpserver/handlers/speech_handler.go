package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/domain/session"
	"jan-server/services/assistant-api/internal/domain/speech"
	"jan-server/services/assistant-api/internal/interfaces/httpserver/requests"
	"jan-server/services/assistant-api/internal/interfaces/httpserver/responses"
	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// SpeechHandler exposes HTTP entrypoints for speech synthesis.
type SpeechHandler struct {
	synthesizer speech.Synthesizer
	sessions    session.Store
	log         zerolog.Logger
}

// NewSpeechHandler constructs the handler. A nil synthesizer makes the
// endpoint answer with a not-implemented error.
func NewSpeechHandler(synthesizer speech.Synthesizer, sessions session.Store, log zerolog.Logger) *SpeechHandler {
	return &SpeechHandler{
		synthesizer: synthesizer,
		sessions:    sessions,
		log:         log.With().Str("handler", "speech").Logger(),
	}
}

// Synthesize handles POST /v1/speech/synthesize
// @Summary Synthesize speech
// @Description Converts text to speech. The voice falls back to the session's voice, then the service default.
// @Tags Speech
// @Accept json
// @Produce audio/wav
// @Param request body requests.SynthesizeRequest true "Synthesis request"
// @Success 200 {file} binary
// @Failure 400 {object} responses.ErrorResponse
// @Failure 501 {object} responses.ErrorResponse
// @Router /v1/speech/synthesize [post]
func (h *SpeechHandler) Synthesize(c *gin.Context) {
	if h.synthesizer == nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotImplemented, "speech synthesis is not configured", "speech-synthesize-off")
		return
	}

	var req requests.SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body", "speech-synthesize-bind")
		return
	}

	voice := req.Voice
	if voice == "" && req.SessionID != "" && h.sessions != nil {
		if settings, err := h.sessions.Get(c.Request.Context(), req.SessionID); err == nil && settings != nil {
			voice = settings.Voice
		}
	}

	audio, err := h.synthesizer.Synthesize(c.Request.Context(), req.Text, voice)
	if err != nil {
		responses.HandleError(c, err, "failed to synthesize speech")
		return
	}

	c.Data(http.StatusOK, "audio/wav", audio)
}
