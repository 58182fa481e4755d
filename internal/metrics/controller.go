package metrics

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MetricsController struct {
	Store *Store
}

func (mc *MetricsController) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, mc.Store.Snapshot())
}
