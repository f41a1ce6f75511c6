package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/talentpulse/assessment-backend/internal/handlers"
	"github.com/talentpulse/assessment-backend/internal/middleware"
)

type RouterConfig struct {
	ReportHandler          *handlers.ReportHandler
	ServiceTokenMiddleware *middleware.ServiceTokenMiddleware
	AllowOrigins           []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		reports := api.Group("/assignments/:assignmentID/report")
		reports.POST("", cfg.ReportHandler.Generate)
		reports.GET("", cfg.ReportHandler.Get)
		reports.POST("/render", cfg.ReportHandler.QueueRender)
		reports.GET("/render", cfg.ReportHandler.RenderStatus)
	}

	// Rendered by the headless browser only; authenticated per URL with a
	// single-assignment service token rather than a user session.
	view := router.Group("/reports")
	view.Use(cfg.ServiceTokenMiddleware.RequireServiceToken())
	view.GET("/:assignmentID/view", cfg.ReportHandler.View)

	return router
}
