package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/vidfetch-go/api/handlers"
	"github.com/yourusername/vidfetch-go/api/middleware"
	"github.com/yourusername/vidfetch-go/internal/app"
)

// SetupRouter sets up the HTTP router
func SetupRouter(scheduler *app.JobScheduler, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(scheduler)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		jobHandler := handlers.NewJobHandler(scheduler, log)
		progressHandler := handlers.NewProgressWebSocketHandler(scheduler, log)

		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.Submit)
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/active", jobHandler.ListActive)
			jobs.GET("/completed", jobHandler.ListCompleted)
			jobs.GET("/stats", jobHandler.GetStats)
			jobs.GET("/ws", progressHandler.HandleWebSocket)
			jobs.GET("/:id", jobHandler.GetJob)
			jobs.GET("/:id/file", jobHandler.GetJobFile)
		}
	}

	return router
}
