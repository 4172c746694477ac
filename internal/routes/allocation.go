package routes

import (
	"github.com/gin-gonic/gin"

	"atoiota/internal/handlers"
	"atoiota/internal/middleware"
)

// SetupAllocationRoutes sets up all routes related to portfolio allocations
func SetupAllocationRoutes(r *gin.Engine, h *handlers.AllocationHandler) {
	allocations := r.Group("/allocations")
	{
		allocations.GET("", h.List)
		allocations.PUT("/draft/:id", h.SetDraftValue)
		allocations.POST("/draft/auto-balance", h.AutoBalance)
		allocations.DELETE("/draft", h.ResetDraft)
		allocations.POST("/apply",
			middleware.RateLimiter(middleware.RateLimiterConfig{RequestsPerSecond: 1, Burst: 3}),
			h.Apply)
	}
}
