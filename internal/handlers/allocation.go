package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atoiota/internal/middleware"
	"atoiota/internal/portfolio"
)

// AllocationHandler serves the allocation store and the submission pipeline.
// Dependencies are injected by the composition root in cmd/api.
type AllocationHandler struct {
	Store    *portfolio.Store
	Pipeline *portfolio.Pipeline
}

// DraftValueRequest is the body for a single draft edit.
type DraftValueRequest struct {
	Value *int `json:"value" binding:"required"`
}

// List returns the committed portfolio and the pending draft, if any.
func (h *AllocationHandler) List(c *gin.Context) {
	committed := h.Store.Committed()
	draft := h.Store.Draft()

	body := gin.H{
		"allocations": committed,
		"total":       portfolio.Sum(committed),
	}
	if draft != nil {
		body["pending_allocations"] = draft
		body["pending_total"] = portfolio.Sum(draft)
		body["balanced"] = portfolio.IsBalanced(draft)
	} else {
		body["balanced"] = true
	}
	c.JSON(http.StatusOK, body)
}

// SetDraftValue replaces one category's allocation in the draft.
func (h *AllocationHandler) SetDraftValue(c *gin.Context) {
	var request DraftValueRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request format",
			"details": gin.H{
				"value": "Required field, integer between 0 and 100",
			},
		})
		return
	}

	if err := h.Store.SetDraftValue(c.Param("id"), *request.Value); err != nil {
		respondError(c, err)
		return
	}

	draft := h.Store.Draft()
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"pending_allocations": draft,
		"pending_total":       portfolio.Sum(draft),
		"balanced":            portfolio.IsBalanced(draft),
	})
}

// AutoBalance rescales the draft so it sums to 100.
func (h *AllocationHandler) AutoBalance(c *gin.Context) {
	draft, err := h.Store.AutoBalanceDraft()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"pending_allocations": draft,
		"pending_total":       portfolio.Sum(draft),
		"balanced":            true,
	})
}

// ResetDraft discards the draft.
func (h *AllocationHandler) ResetDraft(c *gin.Context) {
	h.Store.ResetDraft()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Apply submits the draft through the pipeline. The wallet session comes from
// the auth middleware; a missing session fails inside the pipeline with
// UNAUTHENTICATED so the precondition order stays intact.
func (h *AllocationHandler) Apply(c *gin.Context) {
	session := middleware.SessionFrom(c)

	rec, err := h.Pipeline.Apply(c.Request.Context(), session)
	if err != nil {
		if rec != nil {
			// The attempt entered the ledger before failing; include it so the
			// client can show the failed record.
			code := portfolio.ErrCode(err)
			c.JSON(statusFor(code), gin.H{
				"success":     false,
				"code":        code,
				"message":     err.Error(),
				"transaction": rec,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Your portfolio allocations have been successfully updated on the blockchain.",
		"transaction": rec,
		"allocations": h.Store.Committed(),
	})
}
