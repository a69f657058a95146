package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/AmanShaikh33/HUDDLENEW/internal/configuration"
	"github.com/AmanShaikh33/HUDDLENEW/internal/handler"
	"github.com/AmanShaikh33/HUDDLENEW/internal/hub"
)

// MonitorRouters sets up monitoring API routes
func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	monitorService := hub.NewMonitorService(container.Hub)
	monitorHandler := handler.NewMonitorHandler(monitorService)

	monitorGroup := router.Group("/api/monitor")
	{
		monitorGroup.GET("/stats", monitorHandler.GetHubStats)
	}
}
