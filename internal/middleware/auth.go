package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"atoiota/internal/portfolio"
)

// sessionKey is the gin context key carrying the wallet session.
const sessionKey = "walletSession"

// SessionClaims is the JWT payload of a wallet session.
type SessionClaims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// IssueSessionToken signs a session JWT for a verified wallet address.
func IssueSessionToken(secret, address string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := &SessionClaims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates a session JWT and returns its claims.
func ParseSessionToken(secret, tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// WalletSession extracts a bearer session token when present and stores the
// session in the context. A missing token is not an error here: the
// submission pipeline owns the UNAUTHENTICATED failure so the taxonomy stays
// in one place. A present-but-invalid token is rejected immediately.
func WalletSession(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			c.Next()
			return
		}

		claims, err := ParseSessionToken(jwtSecret, tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"code":    portfolio.CodeUnauthenticated,
				"message": "session token is invalid or expired",
			})
			c.Abort()
			return
		}

		c.Set(sessionKey, &portfolio.Session{Address: claims.Address})
		c.Next()
	}
}

// SessionFrom returns the wallet session stored by WalletSession, or nil.
func SessionFrom(c *gin.Context) *portfolio.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, ok := v.(*portfolio.Session)
	if !ok {
		return nil
	}
	return session
}
