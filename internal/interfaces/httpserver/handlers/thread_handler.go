package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/assistant-api/internal/domain/chat"
	"jan-server/services/assistant-api/internal/domain/thread"
	"jan-server/services/assistant-api/internal/infrastructure/auth"
	"jan-server/services/assistant-api/internal/interfaces/httpserver/responses"
)

const defaultThreadPageSize = 20

// ThreadHandler exposes HTTP entrypoints for thread records.
type ThreadHandler struct {
	threads thread.Service
	chat    chat.Service
	log     zerolog.Logger
}

// NewThreadHandler constructs the handler. Deletes route through the chat
// service so the paired conversation record goes with the thread.
func NewThreadHandler(threads thread.Service, chatService chat.Service, log zerolog.Logger) *ThreadHandler {
	return &ThreadHandler{
		threads: threads,
		chat:    chatService,
		log:     log.With().Str("handler", "thread").Logger(),
	}
}

// List handles GET /v1/threads
// @Summary List threads
// @Description Returns a page of threads, newest first. Scoped to the calling user when authentication is enabled.
// @Tags Threads
// @Produce json
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Page offset"
// @Success 200 {object} responses.ThreadListPayload
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/threads [get]
func (h *ThreadHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultThreadPageSize)))
	if err != nil || limit <= 0 {
		limit = defaultThreadPageSize
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	threads, total, err := h.threads.ListThreads(c.Request.Context(), c.GetString(auth.SubjectKey), limit, offset)
	if err != nil {
		responses.HandleError(c, err, "failed to list threads")
		return
	}

	c.JSON(http.StatusOK, responses.ThreadListPayload{Data: threads, Total: total})
}

// Get handles GET /v1/threads/:thread_id
// @Summary Get a thread
// @Description Returns the thread with its feedback entries and steps.
// @Tags Threads
// @Produce json
// @Param thread_id path string true "Thread ID"
// @Success 200 {object} responses.ThreadDetailPayload
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/threads/{thread_id} [get]
func (h *ThreadHandler) Get(c *gin.Context) {
	threadID := c.Param("thread_id")

	th, err := h.threads.GetThread(c.Request.Context(), threadID)
	if err != nil {
		responses.HandleError(c, err, "failed to get thread")
		return
	}

	steps, err := h.threads.ListSteps(c.Request.Context(), threadID)
	if err != nil {
		responses.HandleError(c, err, "failed to list thread steps")
		return
	}

	c.JSON(http.StatusOK, responses.ThreadDetailPayload{Thread: th, Steps: steps})
}

// Delete handles DELETE /v1/threads/:thread_id
// @Summary Delete a thread
// @Description Deletes the thread with its steps and the paired conversation record.
// @Tags Threads
// @Produce json
// @Param thread_id path string true "Thread ID"
// @Success 200 {object} responses.DeletedPayload
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/threads/{thread_id} [delete]
func (h *ThreadHandler) Delete(c *gin.Context) {
	threadID := c.Param("thread_id")

	if err := h.chat.DeleteConversation(c.Request.Context(), threadID); err != nil {
		responses.HandleError(c, err, "failed to delete thread")
		return
	}

	c.JSON(http.StatusOK, responses.DeletedPayload{ID: threadID, Deleted: true})
}
