package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	apperrors "github.com/jafarshop/storefront/pkg/errors"
)

type fakeCartBackend struct {
	lines  []domain.CartLine
	cartID string
	err    error
}

func (f *fakeCartBackend) CreateCart(ctx context.Context, lines []domain.CartLine) (*domain.Cart, error) {
	f.lines = lines
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Cart{ID: "gid://shopify/Cart/new", CheckoutURL: "https://shop.example.com/cart/c/new"}, nil
}

func (f *fakeCartBackend) AddCartLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.Cart, error) {
	f.cartID = cartID
	f.lines = lines
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Cart{ID: cartID}, nil
}

func TestNormalizeCartLines(t *testing.T) {
	lines, err := NormalizeCartLines([]domain.CartLine{
		{MerchandiseID: "123", Quantity: 2},
		{MerchandiseID: " gid://shopify/ProductVariant/456 ", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.CartLine{
		{MerchandiseID: "gid://shopify/ProductVariant/123", Quantity: 2},
		{MerchandiseID: "gid://shopify/ProductVariant/456", Quantity: 1},
	}, lines)

	_, err = NormalizeCartLines(nil)
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))

	_, err = NormalizeCartLines([]domain.CartLine{
		{MerchandiseID: "gid://shopify/Product/1", Quantity: 0},
	})
	var validation *apperrors.ErrValidation
	require.True(t, errors.As(err, &validation))
	assert.Contains(t, validation.Fields, "lines[0].merchandiseId")
	assert.Contains(t, validation.Fields, "lines[0].quantity")
}

func TestCartServiceCreate(t *testing.T) {
	backend := &fakeCartBackend{}
	s := NewCartService(backend, zap.NewNop())

	cart, err := s.Create(context.Background(), []domain.CartLine{{MerchandiseID: "7", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/cart/c/new", cart.CheckoutURL)
	assert.Equal(t, "gid://shopify/ProductVariant/7", backend.lines[0].MerchandiseID)

	backend.err = &apperrors.ErrUpstream{Service: "shopify", Status: 500}
	_, err = s.Create(context.Background(), []domain.CartLine{{MerchandiseID: "7", Quantity: 1}})
	assert.Equal(t, http.StatusBadGateway, apperrors.HTTPStatus(err))
}

func TestCartServiceAddLines(t *testing.T) {
	backend := &fakeCartBackend{}
	s := NewCartService(backend, zap.NewNop())

	_, err := s.AddLines(context.Background(), "abc", []domain.CartLine{{MerchandiseID: "7", Quantity: 1}})
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
	assert.Empty(t, backend.cartID)

	cart, err := s.AddLines(context.Background(), "gid://shopify/Cart/abc", []domain.CartLine{{MerchandiseID: "7", Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Cart/abc", cart.ID)
	assert.Equal(t, 3, backend.lines[0].Quantity)
}
