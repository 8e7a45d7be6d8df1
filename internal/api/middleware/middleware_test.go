package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
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

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	apperrors "github.com/jafarshop/storefront/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAdminAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	newEngine := func(keyHash string) *gin.Engine {
		r := gin.New()
		r.GET("/internal/x", AdminAuth(keyHash, zap.NewNop()), func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return r
	}

	tests := []struct {
		name    string
		hash    string
		header  string
		want    int
		wantErr string
	}{
		{"disabled without hash", "", "Bearer s3cret", http.StatusNotFound, "route not found: /internal/x"},
		{"missing header", string(hash), "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", string(hash), "Basic s3cret", http.StatusUnauthorized, "invalid authorization header format"},
		{"empty key", string(hash), "Bearer  ", http.StatusUnauthorized, "missing API key"},
		{"wrong key", string(hash), "Bearer nope", http.StatusUnauthorized, "invalid API key"},
		{"valid key", string(hash), "Bearer s3cret", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/internal/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			newEngine(tt.hash).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.wantErr != "" {
				assert.JSONEq(t, `{"error":"`+tt.wantErr+`"}`, w.Body.String())
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		body string
	}{
		{"not found", fmt.Errorf("wrapped: %w", &apperrors.ErrNotFound{Resource: "collection", ID: "tea"}), http.StatusNotFound, `{"error":"collection not found: tea"}`},
		{"conflict", &apperrors.ErrConflict{Message: "taken"}, http.StatusConflict, `{"error":"taken"}`},
		{"unauthorized", &apperrors.ErrUnauthorized{}, http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{"validation fields", &apperrors.ErrValidation{Message: "bad", Fields: map[string]string{"email": "required"}}, http.StatusBadRequest, `{"error":"bad","fields":{"email":"required"}}`},
		{"upstream body hidden", &apperrors.ErrUpstream{Service: "shopify", Status: 500, Body: "secret"}, http.StatusBadGateway, `{"error":"upstream service error"}`},
		{"plain error hidden", errors.New("dial tcp: refused"), http.StatusInternalServerError, `{"error":"internal error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			WriteError(c, zap.NewNop(), tt.err)
			assert.Equal(t, tt.want, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestHashAPIKey(t *testing.T) {
	hash, err := HashAPIKey("key")
	require.NoError(t, err)
	assert.True(t, VerifyAPIKey("key", hash))
	assert.False(t, VerifyAPIKey("other", hash))
	assert.False(t, VerifyAPIKey("key", "not-a-hash"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}

type fakeIdempotencyRepo struct {
	keys map[string]*domain.IdempotencyKey
	err  error
}

func (f *fakeIdempotencyRepo) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.keys[key], nil
}

func (f *fakeIdempotencyRepo) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	f.keys[key.Key] = key
	return nil
}

func (f *fakeIdempotencyRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// idempotencyEngine echoes what the middleware put in the context
func idempotencyEngine(repos *repository.Repositories) *gin.Engine {
	r := gin.New()
	r.POST("/v1/carts", IdempotencyMiddleware(repos, zap.NewNop()), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		key, hash, existing := GetIdempotencyInfo(c)
		c.JSON(http.StatusOK, gin.H{
			"body":     string(body),
			"key":      key,
			"hasHash":  hash != "",
			"existing": existing != nil,
		})
	})
	return r
}

func postCart(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/carts", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware(t *testing.T) {
	const body = `{"lines":[{"merchandiseId":"1","quantity":1}]}`
	repo := &fakeIdempotencyRepo{keys: map[string]*domain.IdempotencyKey{}}
	r := idempotencyEngine(&repository.Repositories{IdempotencyKey: repo})

	t.Run("new key is handed to the handler and body is preserved", func(t *testing.T) {
		w := postCart(r, "k1", body)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"key":"k1"`)
		assert.Contains(t, w.Body.String(), `"hasHash":true`)
		assert.Contains(t, w.Body.String(), `merchandiseId`)
	})

	sum := sha256.Sum256([]byte(body))
	repo.keys["k2"] = &domain.IdempotencyKey{Key: "k2", CartID: "gid://shopify/Cart/1", RequestHash: hex.EncodeToString(sum[:])}

	t.Run("same key and payload is a replay", func(t *testing.T) {
		w := postCart(r, "k2", body)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"existing":true`)
	})

	t.Run("same key with a different payload conflicts", func(t *testing.T) {
		w := postCart(r, "k2", `{"lines":[]}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error":"idempotency key conflict: same key used with different payload"}`, w.Body.String())
	})

	t.Run("no key passes through", func(t *testing.T) {
		w := postCart(r, "", body)
		assert.Contains(t, w.Body.String(), `"key":""`)
	})

	t.Run("lookup failure passes through", func(t *testing.T) {
		failing := idempotencyEngine(&repository.Repositories{IdempotencyKey: &fakeIdempotencyRepo{err: errors.New("db down")}})
		w := postCart(failing, "k3", body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"existing":false`)
	})

	t.Run("no database passes through", func(t *testing.T) {
		w := postCart(idempotencyEngine(nil), "k4", body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"key":""`)
	})
}
