package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atoiota/internal/ledger"
	"atoiota/internal/middleware"
	"atoiota/internal/portfolio"
	"atoiota/pkg/evm"
)

const (
	testOwner  = "0x9fD044bEc4C2A96Bf9C356E57bbf853697e00a66"
	testSecret = "test-secret"
)

func newAllocationRouter(t *testing.T, sim *evm.Simulator) (*gin.Engine, *portfolio.Store) {
	t.Helper()
	db := newTestDB(t)
	store := portfolio.NewStore(db)
	pipeline := portfolio.NewPipeline(store, ledger.New(db), sim)
	h := &AllocationHandler{Store: store, Pipeline: pipeline}

	r := gin.New()
	r.Use(middleware.WalletSession(testSecret))
	group := r.Group("/api/allocations")
	{
		group.GET("", h.List)
		group.PUT("/draft/:id", h.SetDraftValue)
		group.POST("/draft/auto-balance", h.AutoBalance)
		group.DELETE("/draft", h.ResetDraft)
		group.POST("/apply", h.Apply)
	}
	return r, store
}

func ownerToken(t *testing.T) string {
	t.Helper()
	token, err := middleware.IssueSessionToken(testSecret, testOwner, time.Hour)
	require.NoError(t, err)
	return token
}

func TestListAllocations(t *testing.T) {
	r, store := newAllocationRouter(t, evm.NewSimulator(testOwner, 0))

	w, body := doJSON(t, r, http.MethodGet, "/api/allocations", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), body["total"])
	assert.Equal(t, true, body["balanced"])
	assert.NotContains(t, body, "pending_allocations")

	require.NoError(t, store.SetDraftValue("meme", 22))

	w, body = doJSON(t, r, http.MethodGet, "/api/allocations", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(112), body["pending_total"])
	assert.Equal(t, false, body["balanced"])
}

func TestSetDraftValueEndpoint(t *testing.T) {
	r, _ := newAllocationRouter(t, evm.NewSimulator(testOwner, 0))

	t.Run("valid edit", func(t *testing.T) {
		w, body := doJSON(t, r, http.MethodPut, "/api/allocations/draft/meme",
			gin.H{"value": 22}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(112), body["pending_total"])
		assert.Equal(t, false, body["balanced"])
	})

	t.Run("missing value", func(t *testing.T) {
		w, body := doJSON(t, r, http.MethodPut, "/api/allocations/draft/meme",
			gin.H{}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])
	})

	t.Run("zero is a legal value", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPut, "/api/allocations/draft/meme",
			gin.H{"value": 0}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		w, body := doJSON(t, r, http.MethodPut, "/api/allocations/draft/unknown",
			gin.H{"value": 10}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, string(portfolio.CodeNotFound), body["code"])
	})

	t.Run("value out of range", func(t *testing.T) {
		w, body := doJSON(t, r, http.MethodPut, "/api/allocations/draft/meme",
			gin.H{"value": 101}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, string(portfolio.CodeInvalidAllocation), body["code"])
	})
}

func TestAutoBalanceEndpoint(t *testing.T) {
	r, store := newAllocationRouter(t, evm.NewSimulator(testOwner, 0))
	require.NoError(t, store.SetDraftValue("meme", 22))

	w, body := doJSON(t, r, http.MethodPost, "/api/allocations/draft/auto-balance", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), body["pending_total"])
	assert.Equal(t, true, body["balanced"])
}

func TestResetDraftEndpoint(t *testing.T) {
	r, store := newAllocationRouter(t, evm.NewSimulator(testOwner, 0))
	require.NoError(t, store.SetDraftValue("meme", 22))

	w, _ := doJSON(t, r, http.MethodDelete, "/api/allocations/draft", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, store.Draft())
}

func TestApplyEndpoint(t *testing.T) {
	t.Run("requires a wallet session", func(t *testing.T) {
		r, store := newAllocationRouter(t, evm.NewSimulator(testOwner, 0))
		require.NoError(t, store.SetDraftValue("meme", 22))

		w, body := doJSON(t, r, http.MethodPost, "/api/allocations/apply", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, string(portfolio.CodeUnauthenticated), body["code"])
	})

	t.Run("rejects an invalid token outright", func(t *testing.T) {
		r, _ := newAllocationRouter(t, evm.NewSimulator(testOwner, 0))

		w, _ := doJSON(t, r, http.MethodPost, "/api/allocations/apply", nil,
			bearer("not-a-jwt"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a non-owner wallet", func(t *testing.T) {
		r, store := newAllocationRouter(t, evm.NewSimulator(testOwner, 0))
		require.NoError(t, store.SetDraftValue("meme", 22))

		token, err := middleware.IssueSessionToken(testSecret,
			"0x0000000000000000000000000000000000000001", time.Hour)
		require.NoError(t, err)

		w, body := doJSON(t, r, http.MethodPost, "/api/allocations/apply", nil, bearer(token))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, string(portfolio.CodeForbidden), body["code"])
	})

	t.Run("unbalanced draft returns the sum", func(t *testing.T) {
		r, store := newAllocationRouter(t, evm.NewSimulator(testOwner, 0))
		require.NoError(t, store.SetDraftValue("meme", 22))

		w, body := doJSON(t, r, http.MethodPost, "/api/allocations/apply", nil,
			bearer(ownerToken(t)))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, string(portfolio.CodeInvalidAllocation), body["code"])
		assert.Equal(t, float64(112), body["sum"])
	})

	t.Run("all-zero draft still reports its sum", func(t *testing.T) {
		r, store := newAllocationRouter(t, evm.NewSimulator(testOwner, 0))
		for _, cat := range store.Committed() {
			require.NoError(t, store.SetDraftValue(cat.ID, 0))
		}

		w, body := doJSON(t, r, http.MethodPost, "/api/allocations/apply", nil,
			bearer(ownerToken(t)))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, string(portfolio.CodeInvalidAllocation), body["code"])

		sum, ok := body["sum"]
		require.True(t, ok)
		assert.Equal(t, float64(0), sum)
	})

	t.Run("confirmed apply returns the committed set", func(t *testing.T) {
		r, store := newAllocationRouter(t, evm.NewSimulator(testOwner, 0))
		require.NoError(t, store.SetDraftValue("meme", 22))
		_, err := store.AutoBalanceDraft()
		require.NoError(t, err)

		w, body := doJSON(t, r, http.MethodPost, "/api/allocations/apply", nil,
			bearer(ownerToken(t)))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])

		tx, ok := body["transaction"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "confirmed", tx["status"])
		assert.NotEmpty(t, tx["hash"])
		assert.Nil(t, store.Draft())
	})

	t.Run("failed write still returns the ledger record", func(t *testing.T) {
		sim := evm.NewSimulator(testOwner, 0)
		sim.FailWrites(errors.New("rpc unreachable"))
		r, store := newAllocationRouter(t, sim)
		require.NoError(t, store.SetDraftValue("meme", 22))
		_, err := store.AutoBalanceDraft()
		require.NoError(t, err)

		w, body := doJSON(t, r, http.MethodPost, "/api/allocations/apply", nil,
			bearer(ownerToken(t)))
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, false, body["success"])

		tx, ok := body["transaction"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "failed", tx["status"])
	})
}
