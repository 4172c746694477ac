package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"atoiota/internal/ledger"
	"atoiota/internal/models"
	"atoiota/pkg/evm"
)

// TransactionHandler serves the append-only submission ledger.
type TransactionHandler struct {
	Ledger       *ledger.Ledger
	ExplorerBase string
}

type transactionView struct {
	models.TransactionRecord
	ExplorerURL string `json:"explorer_url,omitempty"`
}

func (h *TransactionHandler) view(rec models.TransactionRecord) transactionView {
	v := transactionView{TransactionRecord: rec}
	if rec.Hash != "" {
		v.ExplorerURL = evm.ExplorerTxURL(h.ExplorerBase, rec.Hash)
	}
	return v
}

// List returns ledger records, most recent first. Optional ?limit=N.
func (h *TransactionHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid limit"})
			return
		}
		limit = n
	}

	recs, err := h.Ledger.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	views := make([]transactionView, len(recs))
	for i, rec := range recs {
		views[i] = h.view(rec)
	}
	c.JSON(http.StatusOK, gin.H{"transactions": views})
}

// Get returns one record by its current id (placeholder or hash) or its
// stable ref.
func (h *TransactionHandler) Get(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.Ledger.FindByTxID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec, err = h.Ledger.Get(id)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Record not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.view(*rec))
}

// Export streams the whole ledger as JSON.
func (h *TransactionHandler) Export(c *gin.Context) {
	data, err := h.Ledger.Export()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="transactions.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Import appends previously exported records that are not already present.
func (h *TransactionHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read body"})
		return
	}

	imported, err := h.Ledger.Import(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "imported": imported})
}
