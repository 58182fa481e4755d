package metrics

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, store *Store) {
	metricsController := &MetricsController{Store: store}

	r.GET("/api/v1/metrics", metricsController.GetMetrics)
}
