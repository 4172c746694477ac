package routes

import (
	"github.com/gin-gonic/gin"

	"atoiota/internal/handlers"
)

// SetupTransactionRoutes sets up all routes related to the submission ledger
func SetupTransactionRoutes(r *gin.Engine, h *handlers.TransactionHandler) {
	transactions := r.Group("/transactions")
	{
		transactions.GET("", h.List)
		transactions.GET("/:id", h.Get)
	}

	// Export/import live under their own prefix so the :id wildcard above
	// stays unambiguous.
	ledger := r.Group("/ledger")
	{
		ledger.GET("/export", h.Export)
		ledger.POST("/import", h.Import)
	}
}
