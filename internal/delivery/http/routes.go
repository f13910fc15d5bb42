package http

import (
	"github.com/gin-gonic/gin"
	"github.com/platelens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		food := v1.Group("/food")
		{
			// any method reaches the handler so non-POST calls get a 400
			food.Any("/analyze", BodyLimitMiddleware(requestBodyLimit(cfg.Server.MaxImageBytes)), handler.AnalyzeFood)
		}

		v1.GET("/meal-entries/:id", handler.GetMealEntry)
	}

	return router
}

// requestBodyLimit allows for base64 expansion of the largest accepted image
func requestBodyLimit(maxImageBytes int) int64 {
	if maxImageBytes <= 0 {
		return 0
	}
	return int64(maxImageBytes)*4/3 + 64<<10
}
