package routes

import (
	"github.com/gin-gonic/gin"

	"atoiota/internal/handlers"
	"atoiota/internal/middleware"
)

// SetupAdvisoryRoutes sets up all routes related to the advisory feed
func SetupAdvisoryRoutes(r *gin.Engine, h *handlers.AdvisoryHandler) {
	limiter := middleware.RateLimiter(middleware.RateLimiterConfig{RequestsPerSecond: 2, Burst: 5})

	advisory := r.Group("/advisory")
	{
		advisory.POST("/suggestions", h.Suggest)
		advisory.POST("/chat", limiter, h.Chat)
		advisory.GET("/insights/:symbol", limiter, h.Insight)
	}
}
