package approuters

import (
	"github.com/Mantuja-khan/ChatApplication/internal/configuration"

	"github.com/gin-gonic/gin"
)

func PushRouters(router *gin.Engine, container *configuration.Container) {
	pushRoute := router.Group("/api/push")
	{
		pushRoute.GET("/public-key", container.PushHandler.PublicKey)

		authed := pushRoute.Group("")
		authed.Use(AuthMiddleware(container.Config.Auth.JWTSecret))
		{
			authed.POST("/subscribe", container.PushHandler.Subscribe)
			authed.DELETE("/subscribe", container.PushHandler.Unsubscribe)
		}
	}
}
