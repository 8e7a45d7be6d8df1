package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/mailchimp"
	"github.com/jafarshop/storefront/internal/metric"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/service"
	apperrors "github.com/jafarshop/storefront/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeShop stands in for the Shopify Storefront API
type fakeShop struct {
	menuErr error
	carts   int
}

func (f *fakeShop) GetMenu(ctx context.Context, handle string) (*domain.Menu, error) {
	if f.menuErr != nil {
		return nil, f.menuErr
	}
	return &domain.Menu{Handle: handle, Items: []domain.MenuNode{
		{ID: "1", Title: "Drinks", URL: "/collections/drinks", Items: []domain.MenuNode{
			{ID: "2", Title: "Cola", URL: "https://shop.example.com/collections/cola?sort=price"},
		}},
	}}, nil
}

func (f *fakeShop) GetCollection(ctx context.Context, handle, cursor string, first int) (*domain.Collection, error) {
	switch handle {
	case "cola", "drinks":
		return &domain.Collection{Handle: handle, Title: strings.ToUpper(handle), Products: []domain.ProductSummary{}}, nil
	}
	return nil, &apperrors.ErrNotFound{Resource: "collection", ID: handle}
}

func (f *fakeShop) GetProduct(ctx context.Context, handle string) (*domain.Product, error) {
	if handle != "cola-zero" {
		return nil, &apperrors.ErrNotFound{Resource: "product", ID: handle}
	}
	return &domain.Product{Handle: handle, Collections: []domain.CollectionLink{{Handle: "cola"}}}, nil
}

func (f *fakeShop) CreateCart(ctx context.Context, lines []domain.CartLine) (*domain.Cart, error) {
	f.carts++
	return &domain.Cart{ID: "gid://shopify/Cart/c1", CheckoutURL: "https://shop.example.com/cart/c/c1", TotalQty: lines[0].Quantity}, nil
}

func (f *fakeShop) AddCartLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.Cart, error) {
	return &domain.Cart{ID: cartID}, nil
}

type fakeList struct{}

func (fakeList) Subscribe(ctx context.Context, email string, merge map[string]string) (*mailchimp.Member, error) {
	return &mailchimp.Member{ID: "h", EmailAddress: email, Status: domain.SubscriberStatusSubscribed}, nil
}

type unconfiguredPages struct{}

func (unconfiguredPages) GetPage(ctx context.Context, slug string) (*domain.Page, error) {
	return nil, &apperrors.ErrNotConfigured{Service: "strapi"}
}

type memIdempotency struct {
	keys map[string]*domain.IdempotencyKey
}

func (m *memIdempotency) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	return m.keys[key], nil
}

func (m *memIdempotency) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	m.keys[key.Key] = key
	return nil
}

func (m *memIdempotency) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type testServer struct {
	router *gin.Engine
	shop   *fakeShop
}

func newTestServer(t *testing.T, adminHash string) *testServer {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{
		Environment:     "test",
		Menu:            config.MenuConfig{Handle: "main-menu-1", FetchTimeout: time.Second},
		AdminAPIKeyHash: adminHash,
	}
	shop := &fakeShop{}
	metrics := metric.NewNopMetrics()
	repos := &repository.Repositories{IdempotencyKey: &memIdempotency{keys: map[string]*domain.IdempotencyKey{}}}
	svcs := &Services{
		Catalog:    service.NewCatalogService(shop, cfg.Menu, metrics, logger),
		Cart:       service.NewCartService(shop, logger),
		Newsletter: service.NewNewsletterService(fakeList{}, nil, logger),
		Pages:      unconfiguredPages{},
	}
	return &testServer{router: NewRouter(cfg, svcs, repos, metrics, logger), shop: shop}
}

func (s *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestRouter_HealthAndRoot(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = s.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/v1/collections/*path")
}

func TestRouter_Menu(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do(http.MethodGet, "/v1/menu", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var menu domain.Menu
	decode(t, w, &menu)
	assert.Len(t, menu.Items, 1)

	s.shop.menuErr = &apperrors.ErrUpstream{Service: "shopify", Status: 500}
	w = s.do(http.MethodGet, "/v1/menu", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"handle":"main-menu-1","items":[]}`, w.Body.String())
}

func TestRouter_CollectionByPath(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/v1/collections/drinks/cola", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.CollectionPage
	decode(t, w, &page)
	assert.Equal(t, "cola", page.Collection.Handle)
	assert.Equal(t, domain.ResolutionExact, page.Resolution.Outcome)
	assert.Equal(t, "/drinks/cola", page.CanonicalPath)

	w = s.do(http.MethodGet, "/v1/collections/drinks/juice", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "collection not found: juice")

	w = s.do(http.MethodGet, "/v1/collections/cola?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Product(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/v1/products/cola-zero", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.ProductPage
	decode(t, w, &page)
	assert.Equal(t, "/drinks/cola", page.CategoryPath)

	w = s.do(http.MethodGet, "/v1/products/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Carts(t *testing.T) {
	s := newTestServer(t, "")
	const body = `{"lines":[{"merchandiseId":"91","quantity":2}]}`
	key := map[string]string{middleware.IdempotencyKeyHeader: "k1"}

	w := s.do(http.MethodPost, "/v1/carts", body, key)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cart domain.Cart
	decode(t, w, &cart)
	assert.Equal(t, "https://shop.example.com/cart/c/c1", cart.CheckoutURL)

	w = s.do(http.MethodPost, "/v1/carts", body, key)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 1, s.shop.carts)

	w = s.do(http.MethodPost, "/v1/carts", `{"lines":[{"merchandiseId":"92","quantity":1}]}`, key)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/v1/carts", `{"lines":[{"merchandiseId":"91","quantity":0}]}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "lines[0].quantity")

	w = s.do(http.MethodPost, "/v1/carts", `not json`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPost, "/v1/carts/c1/lines?key=secret", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	assert.Equal(t, "gid://shopify/Cart/c1?key=secret", cart.ID)
}

func TestRouter_NewsletterAndPages(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodPost, "/v1/newsletter", `{"email":"ada@example.com"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"ada@example.com","status":"subscribed"}`, w.Body.String())

	w = s.do(http.MethodPost, "/v1/newsletter", `{"email":"nope"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/v1/pages/about", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"strapi not configured"}`, w.Body.String())
}

func TestRouter_Internal(t *testing.T) {
	w := newTestServer(t, "").do(http.MethodGet, "/internal/url-mapping", "", map[string]string{"Authorization": "Bearer x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-key"), bcrypt.MinCost)
	require.NoError(t, err)
	s := newTestServer(t, string(hash))
	auth := map[string]string{"Authorization": "Bearer admin-key"}

	w = s.do(http.MethodGet, "/internal/url-mapping", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/internal/url-mapping", "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":3,"mapping":{"/drinks":"drinks","/drinks/cola":"cola","/cola":"cola"}}`, w.Body.String())

	w = s.do(http.MethodGet, "/internal/resolve?path=/drinks/juice/", "", auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"path":"/drinks/juice","handle":"juice","outcome":"fallback"}`, w.Body.String())

	w = s.do(http.MethodGet, "/internal/resolve", "", auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t, "")
	s.do(http.MethodGet, "/v1/collections/drinks", "", nil)

	w := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `storefront_path_resolutions_total{outcome="exact"} 1`)
	assert.Contains(t, w.Body.String(), `storefront_menu_fetch_total{result="ok"} 1`)
}
