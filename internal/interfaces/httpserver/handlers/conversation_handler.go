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

// ConversationHandler exposes HTTP entrypoints for conversation records.
type ConversationHandler struct {
	service chat.Service
	log     zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(service chat.Service, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		log:     log.With().Str("handler", "conversation").Logger(),
	}
}

// Create handles POST /v1/conversations
// @Summary Create a conversation
// @Description Provisions an empty conversation record. Omitting the id mints one; creating an existing id fails with a conflict.
// @Tags Conversations
// @Accept json
// @Produce json
// @Param request body requests.CreateConversationRequest false "Create request"
// @Success 201 {object} responses.ConversationPayload
// @Failure 409 {object} responses.ErrorResponse
// @Router /v1/conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	var req requests.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// An empty body asks for a generated id.
		req.ConversationID = ""
	}

	conv, err := h.service.CreateConversation(c.Request.Context(), req.ConversationID)
	if err != nil {
		responses.HandleError(c, err, "failed to create conversation")
		return
	}

	c.JSON(http.StatusCreated, responses.FromConversation(conv))
}

// GetContext handles GET /v1/conversations/:conversation_id/context
// @Summary Get conversation context
// @Description Returns the role-tagged message history used as model context. An unseen id gets an empty record and history.
// @Tags Conversations
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} responses.ContextPayload
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id}/context [get]
func (h *ConversationHandler) GetContext(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	if conversationID == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "conversation id is required", "conversation-context-id")
		return
	}

	messages, err := h.service.GetContext(c.Request.Context(), conversationID)
	if err != nil {
		responses.HandleError(c, err, "failed to read conversation context")
		return
	}

	c.JSON(http.StatusOK, responses.ContextPayload{
		ConversationID: conversationID,
		Messages:       messages,
	})
}
