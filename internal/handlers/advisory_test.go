package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atoiota/internal/portfolio"
)

func newAdvisoryRouter() (*gin.Engine, *portfolio.Store) {
	store := portfolio.NewStore(nil)
	h := &AdvisoryHandler{Store: store}

	r := gin.New()
	group := r.Group("/api/advisory")
	{
		group.POST("/suggestions", h.Suggest)
		group.POST("/chat", h.Chat)
		group.GET("/insights/:symbol", h.Insight)
	}
	return r, store
}

func TestSuggestEndpoint(t *testing.T) {
	t.Run("actionable suggestion becomes a draft", func(t *testing.T) {
		r, store := newAdvisoryRouter()

		w, body := doJSON(t, r, http.MethodPost, "/api/advisory/suggestions", gin.H{
			"type":        "rebalance",
			"description": "shift into ai",
			"changes": []gin.H{
				{"category": "ai", "from": 15, "to": 20},
				{"category": "meme", "from": 10, "to": 5},
			},
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["balanced"])
		assert.Equal(t, float64(100), body["pending_total"])
		assert.NotNil(t, store.Draft())
	})

	t.Run("analysis suggestion is rejected", func(t *testing.T) {
		r, store := newAdvisoryRouter()

		w, body := doJSON(t, r, http.MethodPost, "/api/advisory/suggestions", gin.H{
			"type":        "analysis",
			"description": "read this",
		}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, string(portfolio.CodeInvalidState), body["code"])
		assert.Nil(t, store.Draft())
	})
}

func TestChatEndpoint(t *testing.T) {
	r, _ := newAdvisoryRouter()

	w, body := doJSON(t, r, http.MethodPost, "/api/advisory/chat",
		gin.H{"message": "rebalance my portfolio"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body["content"])

	suggestion, ok := body["suggestion"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "rebalance", suggestion["type"])

	t.Run("missing message", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/advisory/chat", gin.H{}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInsightUnconfigured(t *testing.T) {
	r, _ := newAdvisoryRouter()

	w, _ := doJSON(t, r, http.MethodGet, "/api/advisory/insights/iota", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
