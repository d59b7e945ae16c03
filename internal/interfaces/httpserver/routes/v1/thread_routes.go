package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/assistant-api/internal/interfaces/httpserver/handlers"
)

func registerThreadRoutes(router gin.IRoutes, handler *handlers.ThreadHandler) {
	router.GET("/threads", handler.List)
	router.GET("/threads/:thread_id", handler.Get)
	router.DELETE("/threads/:thread_id", handler.Delete)
}

func registerSessionRoutes(router gin.IRoutes, handler *handlers.SessionHandler) {
	router.GET("/sessions/:session_id/settings", handler.GetSettings)
	router.PUT("/sessions/:session_id/settings", handler.PutSettings)
}

func registerSpeechRoutes(router gin.IRoutes, handler *handlers.SpeechHandler) {
	router.POST("/speech/synthesize", handler.Synthesize)
}
