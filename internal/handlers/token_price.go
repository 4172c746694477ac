package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"

	"atoiota/pkg/tokens"
)

// TokenHandler proxies market data for the dashboard token table.
type TokenHandler struct {
	Client *tokens.Client
}

// Prices returns the current market listing. Upstream failures degrade to an
// empty list so the dashboard falls back to cached data instead of erroring.
func (h *TokenHandler) Prices(c *gin.Context) {
	prices, err := h.Client.Markets(c.Request.Context())
	if err != nil {
		logger.Warnf("Failed to fetch token prices: %v", err)
		c.JSON(http.StatusOK, gin.H{"tokens": []tokens.TokenPrice{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": prices})
}
