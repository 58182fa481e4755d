package main

import (
	"log"
	"net/http"
	"os"

	"cnpj-data-api/config"
	"cnpj-data-api/internal/auth"
	"cnpj-data-api/internal/cache"
	"cnpj-data-api/internal/imports"
	"cnpj-data-api/internal/logs"
	"cnpj-data-api/internal/metrics"
	"cnpj-data-api/internal/middlewares"
	"cnpj-data-api/internal/registry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	metricsStore := metrics.NewStore()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		AllowCredentials: false,
	}))
	r.Use(middlewares.RequestIDMiddleware())
	r.Use(middlewares.RequestLogMiddleware(metricsStore))
	r.Use(middlewares.RateLimitMiddleware(cfg.RateLimitPerMinute))
	r.Use(middlewares.APIKeyMiddleware(cfg.APIKeys, []string{"/healthz", "/api/v1/auth/login"}))

	adminAuth := middlewares.AuthMiddleware(cfg.JWTSecret)

	logService := &logs.LogService{DB: db}
	c := cache.New(cfg.RedisURL, cfg.CacheTTLSeconds)
	c.Metrics = metricsStore

	registryService := &registry.RegistryService{DB: db, Cache: c, Metrics: metricsStore}
	registry.RegisterRoutes(r, registryService, cfg.BatchMaxSize)

	metrics.RegisterRoutes(r, metricsStore)
	auth.RegisterRoutes(r, &cfg)
	imports.RegisterRoutes(r, db, adminAuth)
	logs.RegisterRoutes(r, logService, adminAuth)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on 0.0.0.0:%s ...", port)
	log.Fatal(r.Run("0.0.0.0:" + port))
}
