package logs

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, logService *LogService, adminAuth gin.HandlerFunc) {
	logController := &LogController{LogService: logService}

	group := r.Group("/api/v1/logs")
	group.Use(adminAuth)
	{
		group.POST("/search", logController.GetLogs)
	}
}
