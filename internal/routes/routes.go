package routes

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"atoiota/internal/handlers"
	"atoiota/internal/middleware"
	"atoiota/internal/ws"
)

// Handlers bundles the dependency-injected handler set built by the
// composition root in cmd/api.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Allocation  *handlers.AllocationHandler
	Transaction *handlers.TransactionHandler
	Advisory    *handlers.AdvisoryHandler
	Token       *handlers.TokenHandler
	Hub         *ws.Hub
	JWTSecret   string
}

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	// Add health check endpoint
	r.Any("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	// Configure CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Get allowed origins from environment variable
		// Format: comma-separated list, e.g., "http://localhost:3000,http://localhost:3001"
		allowedOriginsStr := os.Getenv("ALLOWED_ORIGINS")
		var allowedOrigins []string

		if allowedOriginsStr != "" {
			origins := strings.Split(allowedOriginsStr, ",")
			for _, o := range origins {
				trimmed := strings.TrimSpace(o)
				if trimmed != "" {
					allowedOrigins = append(allowedOrigins, trimmed)
				}
			}
		}

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		// Handle preflight requests
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.Use(middleware.WalletSession(h.JWTSecret))

	// Setup routes for each module
	SetupAuthRoutes(r, h.Auth)
	SetupAllocationRoutes(r, h.Allocation)
	SetupTransactionRoutes(r, h.Transaction)
	SetupAdvisoryRoutes(r, h.Advisory)
	SetupTokenRoutes(r, h.Token)

	if h.Hub != nil {
		r.GET("/ws/transactions", h.Hub.Handle)
	}

	return r
}
