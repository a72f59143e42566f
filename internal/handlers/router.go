package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/careers-proxy/internal/middleware"
)

// NewRouter wires the careers routes. Kept separate from main so tests can
// run the full chain with httptest.
func NewRouter(h *JobHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestTrace())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)

		// Job Routes
		api.GET("/jobs", h.ListJobs)
		api.GET("/jobs/:id", h.GetJob)
		api.POST("/jobs/:id/apply", h.Apply)
	}

	r.GET("/careers/rss", h.RSS)

	return r
}
