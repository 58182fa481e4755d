package imports

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, adminAuth gin.HandlerFunc) {
	service := &ImportService{DB: db}
	controller := &ImportController{Service: service}

	group := r.Group("/api/v1/imports")
	group.Use(adminAuth)
	{
		group.GET("", controller.GetImports)
		group.GET("/export", controller.ExportImports)
	}
}
