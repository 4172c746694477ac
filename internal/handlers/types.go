package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"atoiota/internal/portfolio"
)

// statusFor maps taxonomy codes to HTTP statuses.
func statusFor(code portfolio.Code) int {
	switch code {
	case portfolio.CodeUnauthenticated:
		return http.StatusUnauthorized
	case portfolio.CodeForbidden:
		return http.StatusForbidden
	case portfolio.CodeNoChanges:
		return http.StatusBadRequest
	case portfolio.CodeInvalidAllocation, portfolio.CodeInvalidState:
		return http.StatusUnprocessableEntity
	case portfolio.CodeNotFound:
		return http.StatusNotFound
	case portfolio.CodeBusy:
		return http.StatusConflict
	case portfolio.CodeWriteFailure, portfolio.CodeConfirmationFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError renders any error as the structured failure envelope. Core
// errors carry their code and, for INVALID_ALLOCATION, the offending sum.
func respondError(c *gin.Context, err error) {
	var coreErr *portfolio.Error
	if errors.As(err, &coreErr) {
		body := gin.H{
			"success": false,
			"code":    coreErr.Code,
			"message": coreErr.Message,
		}
		if coreErr.Sum != nil {
			body["sum"] = *coreErr.Sum
		}
		c.JSON(statusFor(coreErr.Code), body)
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": err.Error(),
	})
}
