package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metric"
	"github.com/jafarshop/storefront/internal/urlmap"
	"github.com/jafarshop/storefront/pkg/errors"
)

const (
	DefaultPageSize = 24
	MaxPageSize     = 250
)

// CatalogBackend is the part of the Shopify Storefront API the catalog reads
type CatalogBackend interface {
	GetMenu(ctx context.Context, handle string) (*domain.Menu, error)
	GetCollection(ctx context.Context, handle, cursor string, first int) (*domain.Collection, error)
	GetProduct(ctx context.Context, handle string) (*domain.Product, error)
}

// CollectionPage is a collection resolved from a category path
type CollectionPage struct {
	Collection    *domain.Collection  `json:"collection"`
	Resolution    urlmap.Resolution   `json:"resolution"`
	CanonicalPath string              `json:"canonicalPath"`
	Breadcrumbs   []urlmap.Breadcrumb `json:"breadcrumbs"`
}

// ProductPage is a product plus where it sits in the category tree
type ProductPage struct {
	Product      *domain.Product     `json:"product"`
	CategoryPath string              `json:"categoryPath,omitempty"`
	Breadcrumbs  []urlmap.Breadcrumb `json:"breadcrumbs"`
}

type CatalogService struct {
	backend     CatalogBackend
	menuHandle  string
	menuTimeout time.Duration
	metrics     *metric.Metrics
	logger      *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(backend CatalogBackend, cfg config.MenuConfig, metrics *metric.Metrics, logger *zap.Logger) *CatalogService {
	if metrics == nil {
		metrics = metric.NewNopMetrics()
	}
	return &CatalogService{
		backend:     backend,
		menuHandle:  cfg.Handle,
		menuTimeout: cfg.FetchTimeout,
		metrics:     metrics,
		logger:      logger,
	}
}

// FetchMenu fetches the configured menu under the menu timeout and returns any error
func (s *CatalogService) FetchMenu(ctx context.Context) (*domain.Menu, error) {
	if s.menuTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.menuTimeout)
		defer cancel()
	}
	menu, err := s.backend.GetMenu(ctx, s.menuHandle)
	if err != nil {
		s.metrics.MenuFetches.Increment("error")
		return nil, err
	}
	s.metrics.MenuFetches.Increment("ok")
	return menu, nil
}

// Menu returns the configured menu. Fetch failures, timeouts and a missing
// menu all degrade to an empty tree.
func (s *CatalogService) Menu(ctx context.Context) *domain.Menu {
	menu, err := s.FetchMenu(ctx)
	if err != nil {
		s.logger.Warn("Menu fetch failed, using empty menu", zap.String("menu_handle", s.menuHandle), zap.Error(err))
		return &domain.Menu{Handle: s.menuHandle, Items: []domain.MenuNode{}}
	}
	if menu.Items == nil {
		menu.Items = []domain.MenuNode{}
	}
	return menu
}

// URLMapping builds the category path mapping from the current menu
func (s *CatalogService) URLMapping(ctx context.Context) urlmap.Mapping {
	return urlmap.BuildURLMapping(s.Menu(ctx).Items)
}

// Resolve resolves a category path against the current menu
func (s *CatalogService) Resolve(ctx context.Context, path string) urlmap.Resolution {
	return s.resolve(path, s.URLMapping(ctx))
}

func (s *CatalogService) resolve(path string, mapping urlmap.Mapping) urlmap.Resolution {
	res := urlmap.ResolveDetailed(path, mapping)
	s.metrics.PathResolutions.Increment(string(res.Outcome))
	if res.Outcome == domain.ResolutionFallback {
		s.logger.Debug("Category path not in menu, using last segment",
			zap.String("path", res.Path), zap.String("handle", res.Handle))
	}
	return res
}

// CollectionByPath resolves a nested category path to a collection handle and
// fetches that collection. A guessed handle Shopify does not know is ErrNotFound.
func (s *CatalogService) CollectionByPath(ctx context.Context, path, cursor string, limit int) (*CollectionPage, error) {
	mapping := s.URLMapping(ctx)
	res := s.resolve(path, mapping)
	if res.Outcome == domain.ResolutionEmpty {
		return nil, &errors.ErrNotFound{Resource: "collection", ID: res.Path}
	}

	coll, err := s.backend.GetCollection(ctx, res.Handle, cursor, ClampPageSize(limit))
	if err != nil {
		return nil, fmt.Errorf("collection %q for path %s: %w", res.Handle, res.Path, err)
	}

	canonical := res.Path
	if p, ok := mapping.PathFor(res.Handle); ok {
		canonical = p
	}
	return &CollectionPage{
		Collection:    coll,
		Resolution:    res,
		CanonicalPath: canonical,
		Breadcrumbs:   urlmap.Breadcrumbs(canonical),
	}, nil
}

// ProductPage fetches a product and the menu concurrently and places the
// product under the first of its collections that the menu knows.
func (s *CatalogService) ProductPage(ctx context.Context, handle string) (*ProductPage, error) {
	var (
		product *domain.Product
		menu    *domain.Menu
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.backend.GetProduct(gctx, handle)
		if err != nil {
			return fmt.Errorf("product %q: %w", handle, err)
		}
		product = p
		return nil
	})
	g.Go(func() error {
		menu = s.Menu(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := &ProductPage{Product: product, Breadcrumbs: []urlmap.Breadcrumb{}}
	mapping := urlmap.BuildURLMapping(menu.Items)
	for _, c := range product.Collections {
		if p, ok := mapping.PathFor(c.Handle); ok {
			page.CategoryPath = p
			page.Breadcrumbs = urlmap.Breadcrumbs(p)
			break
		}
	}
	return page, nil
}

// ClampPageSize keeps a requested page size within what Shopify accepts
func ClampPageSize(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}
