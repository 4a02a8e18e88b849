package approuters

import (
	"github.com/Mantuja-khan/ChatApplication/internal/configuration"

	"github.com/gin-gonic/gin"
)

func ChatRouters(router *gin.Engine, container *configuration.Container) {
	chatRoute := router.Group("/api/chats")
	chatRoute.Use(AuthMiddleware(container.Config.Auth.JWTSecret))
	{
		chatRoute.GET("/latest", container.ChatHandler.LatestMessages)
		chatRoute.POST("/messages", container.ChatHandler.SendMessage)
		chatRoute.DELETE("/messages/:messageId", container.ChatHandler.DeleteMessage)
		chatRoute.POST("/messages/:messageId/reactions", container.ChatHandler.React)
		chatRoute.GET("/:peerId/messages", container.ChatHandler.GetMessages)
		chatRoute.POST("/:peerId/seen", container.ChatHandler.MarkSeen)
		chatRoute.GET("/:peerId/unread", container.ChatHandler.UnreadCount)
		chatRoute.DELETE("/:peerId", container.ChatHandler.DeleteChat)
	}
}
