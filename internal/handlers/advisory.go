package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atoiota/internal/advisory"
	"atoiota/internal/portfolio"
)

// AdvisoryHandler ingests advisory suggestions and serves the chat assistant.
type AdvisoryHandler struct {
	Store *portfolio.Store
	// Insights is nil when no Gemini key is configured.
	Insights *advisory.InsightClient
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Suggest accepts a suggestion payload and turns it into a draft. Analysis
// suggestions carry no deltas and are rejected.
func (h *AdvisoryHandler) Suggest(c *gin.Context) {
	var suggestion advisory.Suggestion
	if err := c.ShouldBindJSON(&suggestion); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid suggestion format"})
		return
	}

	draft, err := advisory.ApplyToStore(h.Store, suggestion)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"pending_allocations": draft,
		"pending_total":       portfolio.Sum(draft),
		"balanced":            portfolio.IsBalanced(draft),
	})
}

// Chat answers a dashboard chat message, optionally attaching an actionable
// suggestion.
func (h *AdvisoryHandler) Chat(c *gin.Context) {
	var request chatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	reply := advisory.Respond(request.Message, h.Store.Committed())
	c.JSON(http.StatusOK, reply)
}

// Insight returns a Gemini-generated market analysis for a token symbol.
func (h *AdvisoryHandler) Insight(c *gin.Context) {
	if h.Insights == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "Insights are not configured",
		})
		return
	}

	text, err := h.Insights.TokenInsight(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": c.Param("symbol"), "insight": text})
}
