package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/assistant-api/internal/interfaces/httpserver/handlers"
)

func registerChatRoutes(router gin.IRoutes, handler *handlers.ChatHandler) {
	router.POST("/chat/messages", handler.SendMessage)
	router.POST("/chat/audio", handler.SendAudio)
}

func registerConversationRoutes(router gin.IRoutes, handler *handlers.ConversationHandler) {
	router.POST("/conversations", handler.Create)
	router.GET("/conversations/:conversation_id/context", handler.GetContext)
}

func registerFeedbackRoutes(router gin.IRoutes, handler *handlers.FeedbackHandler) {
	router.POST("/feedback", handler.Submit)
	router.DELETE("/feedback/:message_id", handler.Retract)
}
