package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

const IdempotencyKeyHeader = "Idempotency-Key"

const (
	idempotencyExistingKey = "idempotency_existing"
	idempotencyNewKey      = "idempotency_key"
	idempotencyHashKey     = "idempotency_request_hash"
)

// IdempotencyMiddleware handles idempotency key validation. Without a
// database it lets every request through.
func IdempotencyMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if repos == nil || repos.IdempotencyKey == nil {
			c.Next()
			return
		}

		// Only apply to POST/PUT/PATCH requests
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			AbortWithError(c, logger, fmt.Errorf("read request body for idempotency: %w", err))
			return
		}

		// Restore body for handler
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		existingKey, err := repos.IdempotencyKey.GetByKey(c.Request.Context(), idempotencyKey)
		if err != nil {
			logger.Error("Failed to check idempotency key", zap.Error(err))
			c.Next()
			return
		}

		if existingKey != nil {
			if existingKey.RequestHash != requestHash {
				AbortWithError(c, logger, &errors.ErrConflict{
					Message: "idempotency key conflict: same key used with different payload",
				})
				return
			}
			c.Set(idempotencyExistingKey, existingKey)
		} else {
			// New key - stored by the handler once the cart exists
			c.Set(idempotencyNewKey, idempotencyKey)
			c.Set(idempotencyHashKey, requestHash)
		}

		c.Next()
	}
}

// GetIdempotencyInfo retrieves idempotency information from context. When a
// previous request with the same key and payload succeeded, existing is set.
func GetIdempotencyInfo(c *gin.Context) (key string, requestHash string, existing *domain.IdempotencyKey) {
	if v, ok := c.Get(idempotencyExistingKey); ok {
		if k, ok := v.(*domain.IdempotencyKey); ok {
			return "", "", k
		}
	}
	return c.GetString(idempotencyNewKey), c.GetString(idempotencyHashKey), nil
}
