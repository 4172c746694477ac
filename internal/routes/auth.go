package routes

import (
	"github.com/gin-gonic/gin"

	"atoiota/internal/handlers"
)

// SetupAuthRoutes sets up the wallet session routes
func SetupAuthRoutes(r *gin.Engine, h *handlers.AuthHandler) {
	auth := r.Group("/auth")
	{
		auth.POST("/nonce", h.Nonce)
		auth.POST("/session", h.Session)
	}
}
