package approuters

import (
	"github.com/Mantuja-khan/ChatApplication/internal/configuration"

	"github.com/gin-gonic/gin"
)

func FriendRouters(router *gin.Engine, container *configuration.Container) {
	friendRoute := router.Group("/api/friends")
	friendRoute.Use(AuthMiddleware(container.Config.Auth.JWTSecret))
	{
		friendRoute.POST("/requests", container.FriendHandler.SendRequest)
		friendRoute.GET("/requests/pending", container.FriendHandler.Pending)
		friendRoute.PATCH("/requests/:requestId/accept", container.FriendHandler.Accept)
		friendRoute.PATCH("/requests/:requestId/reject", container.FriendHandler.Reject)
		friendRoute.GET("/status/:peerId", container.FriendHandler.Status)
		friendRoute.GET("/contacts", container.FriendHandler.Contacts)
		friendRoute.POST("/block/:userId", container.FriendHandler.Block)
		friendRoute.DELETE("/block/:userId", container.FriendHandler.Unblock)
	}
}
