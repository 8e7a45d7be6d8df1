package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
)

// PageSource serves CMS pages by slug
type PageSource interface {
	GetPage(ctx context.Context, slug string) (*domain.Page, error)
}

// HandleGetPage handles GET /v1/pages/:slug
func HandleGetPage(pages PageSource, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := pages.GetPage(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
