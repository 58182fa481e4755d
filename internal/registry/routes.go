package registry

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, service *RegistryService, batchMaxSize int) {
	controller := &RegistryController{Service: service, BatchMaxSize: batchMaxSize}

	group := r.Group("/api/v1")
	{
		group.GET("/cnpj", controller.GetBatch)
		group.GET("/cnpj/:cnpj", controller.GetCNPJ)
		group.GET("/empresas/search", controller.SearchEmpresas)
	}
}
