package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/metric"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/shopify"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	metrics := metric.NewNopMetrics()
	storefront := shopify.NewStorefrontClient(cfg.Shopify, metrics.UpstreamRequests, logger)

	deps := Dependencies{
		Catalog: service.NewCatalogService(storefront, cfg.Menu, metrics, logger),
	}
	if cfg.Shopify.AdminToken != "" {
		deps.Menus = shopify.NewAdminClient(cfg.Shopify, metrics.UpstreamRequests, logger)
	}

	if err := newRootCommand(deps).Execute(); err != nil {
		os.Exit(1)
	}
}
