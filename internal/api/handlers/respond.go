package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/middleware"
)

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	middleware.WriteError(c, logger, err)
}
