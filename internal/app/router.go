package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mentora-app/mentora-backend/internal/handlers"
	"github.com/mentora-app/mentora-backend/internal/middleware"
)

func wireRouter(cfg Config, insightHandler *handlers.InsightHandler, authMiddleware *middleware.AuthMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("mentora-backend"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	router.GET("/healthz", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())
	{
		api.POST("/insights/generate", insightHandler.Generate)
		api.GET("/insights", insightHandler.ListActive)
		api.GET("/insights/regeneration", insightHandler.RegenerationStatus)
		api.POST("/insights/:id/save", insightHandler.Save)
		api.POST("/insights/:id/dismiss", insightHandler.Dismiss)
		api.POST("/insights/:id/reaction", insightHandler.React)
	}

	return router
}
