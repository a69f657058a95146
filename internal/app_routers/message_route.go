package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/AmanShaikh33/HUDDLENEW/internal/configuration"
)

// MessageRouters sets up the request/response backup surface for the
// live channel: history, send fallback, mark-read and unread counts.
func MessageRouters(router *gin.Engine, container *configuration.Container) {
	messageRoute := router.Group("/api/messages", RequireAuth(container.Tokens))
	{
		messageRoute.GET("/history/:userId", container.MessageHandler.GetHistory)
		messageRoute.POST("/send", container.MessageHandler.SendMessage)
		messageRoute.PUT("/read/:userId", container.MessageHandler.MarkRead)
		messageRoute.GET("/unread-count", container.MessageHandler.GetUnreadCounts)
		messageRoute.GET("/online", container.MessageHandler.GetOnlineUsers)
	}
}
