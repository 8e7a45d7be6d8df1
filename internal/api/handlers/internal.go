package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/service"
)

// HandleURLMapping handles GET /internal/url-mapping: every category path the menu yields
func HandleURLMapping(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		mapping := catalog.URLMapping(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"count":   len(mapping),
			"mapping": mapping,
		})
	}
}

// HandleResolve handles GET /internal/resolve?path=
func HandleResolve(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, ok := c.GetQuery("path")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
			return
		}
		res := catalog.Resolve(c.Request.Context(), path)
		logger.Debug("Resolved category path",
			zap.String("path", res.Path),
			zap.String("handle", res.Handle),
			zap.String("outcome", string(res.Outcome)))
		c.JSON(http.StatusOK, res)
	}
}
