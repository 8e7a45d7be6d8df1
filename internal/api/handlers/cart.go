package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/service"
)

const cartGIDPrefix = "gid://shopify/Cart/"

// CartLinesRequest is the payload of POST /v1/carts and POST /v1/carts/:id/lines
type CartLinesRequest struct {
	Lines []domain.CartLine `json:"lines" binding:"required"`
}

// HandleCreateCart handles POST /v1/carts. A replayed Idempotency-Key
// returns the cart created by the first request.
func HandleCreateCart(carts *service.CartService, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, requestHash, existing := middleware.GetIdempotencyInfo(c)
		if existing != nil {
			c.Header("Idempotent-Replayed", "true")
			c.JSON(http.StatusOK, domain.Cart{ID: existing.CartID, CheckoutURL: existing.CheckoutURL})
			return
		}

		var req CartLinesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		cart, err := carts.Create(c.Request.Context(), req.Lines)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		if key != "" && repos != nil && repos.IdempotencyKey != nil {
			record := &domain.IdempotencyKey{
				Key:         key,
				CartID:      cart.ID,
				CheckoutURL: cart.CheckoutURL,
				RequestHash: requestHash,
			}
			if err := repos.IdempotencyKey.Create(c.Request.Context(), record); err != nil {
				logger.Warn("Failed to store idempotency key", zap.Error(err))
			}
		}

		c.JSON(http.StatusCreated, cart)
	}
}

// HandleAddCartLines handles POST /v1/carts/:id/lines. The id is the cart
// token without the gid prefix; the cart key travels as ?key=.
func HandleAddCartLines(carts *service.CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CartLinesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		cart, err := carts.AddLines(c.Request.Context(), cartGID(c.Param("id"), c.Query("key")), req.Lines)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func cartGID(id, key string) string {
	if id == "" {
		return ""
	}
	if !strings.HasPrefix(id, cartGIDPrefix) {
		id = cartGIDPrefix + id
	}
	if key != "" && !strings.Contains(id, "?key=") {
		id += "?key=" + key
	}
	return id
}
