package auth

import (
	"cnpj-data-api/config"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, cfg *config.Config) {
	service := &AuthService{CFG: cfg}
	controller := &AuthController{Service: service}

	r.POST("/api/v1/auth/login", controller.Login)
}
