package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/service"
)

// HandleGetMenu handles GET /v1/menu. A menu that cannot be fetched is served empty.
func HandleGetMenu(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, catalog.Menu(c.Request.Context()))
	}
}

// HandleGetCollectionByPath handles GET /v1/collections/*path
func HandleGetCollectionByPath(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if l := c.Query("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
				return
			}
			limit = n
		}

		page, err := catalog.CollectionByPath(c.Request.Context(), c.Param("path"), c.Query("cursor"), limit)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// HandleGetProduct handles GET /v1/products/:handle
func HandleGetProduct(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := catalog.ProductPage(c.Request.Context(), c.Param("handle"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
