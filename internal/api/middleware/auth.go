package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/storefront/pkg/errors"
)

// adminKeyCost is the bcrypt cost for admin API keys (faster than passwords)
const adminKeyCost = 10

// AdminAuth guards internal endpoints with a bearer API key checked against
// a bcrypt hash. An empty hash disables the endpoints entirely.
func AdminAuth(keyHash string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			AbortWithError(c, logger, &errors.ErrNotFound{Resource: "route", ID: c.Request.URL.Path})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, logger, &errors.ErrUnauthorized{Message: "missing authorization header"})
			return
		}

		// Extract Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			AbortWithError(c, logger, &errors.ErrUnauthorized{Message: "invalid authorization header format"})
			return
		}

		apiKey := strings.TrimSpace(parts[1])
		if apiKey == "" {
			AbortWithError(c, logger, &errors.ErrUnauthorized{Message: "missing API key"})
			return
		}

		if !VerifyAPIKey(apiKey, keyHash) {
			logger.Warn("Rejected admin API key", zap.String("path", c.Request.URL.Path))
			AbortWithError(c, logger, &errors.ErrUnauthorized{Message: "invalid API key"})
			return
		}

		c.Next()
	}
}

// HashAPIKey hashes an API key using bcrypt
func HashAPIKey(apiKey string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), adminKeyCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAPIKey verifies an API key against a hash
func VerifyAPIKey(apiKey, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey))
	return err == nil
}
