package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atoiota/internal/middleware"
)

func newAuthRouter() *gin.Engine {
	h := &AuthHandler{JWTSecret: testSecret, TokenTTL: time.Hour}
	r := gin.New()
	group := r.Group("/api/auth")
	{
		group.POST("/nonce", h.Nonce)
		group.POST("/session", h.Session)
	}
	return r
}

func TestWalletLoginFlow(t *testing.T) {
	r := newAuthRouter()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/nonce", gin.H{"address": addr}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	nonce, ok := body["nonce"].(string)
	require.True(t, ok)
	assert.Contains(t, nonce, "AToIoTA login")

	sig, err := crypto.Sign(accounts.TextHash([]byte(nonce)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	w, body = doJSON(t, r, http.MethodPost, "/api/auth/session",
		gin.H{"address": addr, "signature": hexutil.Encode(sig)}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	token, ok := body["token"].(string)
	require.True(t, ok)

	claims, err := middleware.ParseSessionToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, addr, claims.Address)

	t.Run("nonce is single use", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/auth/session",
			gin.H{"address": addr, "signature": hexutil.Encode(sig)}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionRejectsBadSignature(t *testing.T) {
	r := newAuthRouter()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	w, body := doJSON(t, r, http.MethodPost, "/api/auth/nonce", gin.H{"address": addr}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	nonce := body["nonce"].(string)

	// Sign with a different key than the claimed address.
	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	sig, err := crypto.Sign(accounts.TextHash([]byte(nonce)), other)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/session",
		gin.H{"address": addr, "signature": hexutil.Encode(sig)}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionWithoutNonce(t *testing.T) {
	r := newAuthRouter()
	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/session",
		gin.H{"address": "0x1", "signature": "0x2"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionTokenExpiry(t *testing.T) {
	token, err := middleware.IssueSessionToken(testSecret, "0xabc", -time.Minute)
	require.NoError(t, err)

	// A non-positive TTL falls back to the 24h default, so the token is valid.
	claims, err := middleware.ParseSessionToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", claims.Address)
}
