package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"atoiota/internal/middleware"
	"atoiota/pkg/evm"
)

// AuthHandler opens wallet sessions: the client requests a nonce, signs it
// with the wallet (EIP-191 personal_sign) and trades the signature for a JWT.
type AuthHandler struct {
	JWTSecret string
	TokenTTL  time.Duration

	mu     sync.Mutex
	nonces map[string]string
}

type nonceRequest struct {
	Address string `json:"address" binding:"required"`
}

type sessionRequest struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// Nonce hands out a one-time message for the wallet to sign.
func (h *AuthHandler) Nonce(c *gin.Context) {
	var request nonceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	nonce := fmt.Sprintf("AToIoTA login %s", uuid.NewString())

	h.mu.Lock()
	if h.nonces == nil {
		h.nonces = make(map[string]string)
	}
	h.nonces[strings.ToLower(request.Address)] = nonce
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// Session verifies the signed nonce and issues the session token.
func (h *AuthHandler) Session(c *gin.Context) {
	var request sessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	key := strings.ToLower(request.Address)
	h.mu.Lock()
	nonce, ok := h.nonces[key]
	if ok {
		delete(h.nonces, key)
	}
	h.mu.Unlock()

	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Request a nonce first"})
		return
	}

	if err := evm.VerifyPersonalSign(request.Address, nonce, request.Signature); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Signature verification failed"})
		return
	}

	token, err := middleware.IssueSessionToken(h.JWTSecret, request.Address, h.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"address": request.Address,
	})
}
