package routes

import (
	"github.com/gin-gonic/gin"

	"atoiota/internal/handlers"
)

// SetupTokenRoutes sets up the market data routes
func SetupTokenRoutes(r *gin.Engine, h *handlers.TokenHandler) {
	tokens := r.Group("/tokens")
	{
		tokens.GET("/prices", h.Prices)
	}
}
