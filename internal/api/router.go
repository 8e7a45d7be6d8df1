package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/handlers"
	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/mailchimp"
	"github.com/jafarshop/storefront/internal/metric"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/shopify"
	"github.com/jafarshop/storefront/internal/strapi"
)

// Services bundles what the handlers call into
type Services struct {
	Catalog    *service.CatalogService
	Cart       *service.CartService
	Newsletter *service.NewsletterService
	Pages      handlers.PageSource
}

// NewServices wires the Shopify, Mailchimp and Strapi clients into services.
// repos may be nil when no database is configured.
func NewServices(cfg *config.Config, repos *repository.Repositories, metrics *metric.Metrics, logger *zap.Logger) *Services {
	storefront := shopify.NewStorefrontClient(cfg.Shopify, metrics.UpstreamRequests, logger)
	return &Services{
		Catalog:    service.NewCatalogService(storefront, cfg.Menu, metrics, logger),
		Cart:       service.NewCartService(storefront, logger),
		Newsletter: service.NewNewsletterService(mailchimp.NewClient(cfg.Mailchimp, metrics.UpstreamRequests, logger), repos, logger),
		Pages:      strapi.NewClient(cfg.Strapi, metrics.UpstreamRequests, logger),
	}
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svcs *Services, repos *repository.Repositories, metrics *metric.Metrics, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(middleware.RequestID())
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Storefront API",
			"endpoints": []string{
				"GET /health",
				"GET /v1/menu",
				"GET /v1/collections/*path",
				"GET /v1/products/:handle",
				"POST /v1/carts",
				"POST /v1/carts/:id/lines",
				"POST /v1/newsletter",
				"GET /v1/pages/:slug",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/v1")
	{
		v1.GET("/menu", handlers.HandleGetMenu(svcs.Catalog, logger))
		v1.GET("/collections/*path", handlers.HandleGetCollectionByPath(svcs.Catalog, logger))
		v1.GET("/products/:handle", handlers.HandleGetProduct(svcs.Catalog, logger))
		v1.GET("/pages/:slug", handlers.HandleGetPage(svcs.Pages, logger))
		v1.POST("/newsletter", handlers.HandleNewsletterSignup(svcs.Newsletter, logger))

		cartRoutes := v1.Group("/carts")
		cartRoutes.Use(middleware.IdempotencyMiddleware(repos, logger))
		{
			cartRoutes.POST("", handlers.HandleCreateCart(svcs.Cart, repos, logger))
			cartRoutes.POST("/:id/lines", handlers.HandleAddCartLines(svcs.Cart, logger))
		}
	}

	// Operator diagnostics for the menu-derived category paths
	internal := router.Group("/internal")
	internal.Use(middleware.AdminAuth(cfg.AdminAPIKeyHash, logger))
	{
		internal.GET("/url-mapping", handlers.HandleURLMapping(svcs.Catalog, logger))
		internal.GET("/resolve", handlers.HandleResolve(svcs.Catalog, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
	}
}
