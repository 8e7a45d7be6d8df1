package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

const (
	variantGIDPrefix = "gid://shopify/ProductVariant/"
	cartGIDPrefix    = "gid://shopify/Cart/"
	maxLineQuantity  = 999
)

// CartBackend is the part of the Shopify Storefront API carts use
type CartBackend interface {
	CreateCart(ctx context.Context, lines []domain.CartLine) (*domain.Cart, error)
	AddCartLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.Cart, error)
}

type CartService struct {
	backend CartBackend
	logger  *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(backend CartBackend, logger *zap.Logger) *CartService {
	return &CartService{
		backend: backend,
		logger:  logger,
	}
}

// Create validates lines and creates a Shopify cart. Payment happens on the
// returned checkout URL.
func (s *CartService) Create(ctx context.Context, lines []domain.CartLine) (*domain.Cart, error) {
	normalized, err := NormalizeCartLines(lines)
	if err != nil {
		return nil, err
	}
	cart, err := s.backend.CreateCart(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

// AddLines validates lines and adds them to an existing cart
func (s *CartService) AddLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.Cart, error) {
	if !strings.HasPrefix(cartID, cartGIDPrefix) || len(cartID) == len(cartGIDPrefix) {
		return nil, &errors.ErrValidation{
			Message: "invalid cart id",
			Fields:  map[string]string{"cartId": "must be a Shopify cart GID"},
		}
	}
	normalized, err := NormalizeCartLines(lines)
	if err != nil {
		return nil, err
	}
	cart, err := s.backend.AddCartLines(ctx, cartID, normalized)
	if err != nil {
		return nil, fmt.Errorf("add cart lines: %w", err)
	}
	return cart, nil
}

// NormalizeCartLines checks quantities and turns numeric variant ids into
// ProductVariant GIDs.
func NormalizeCartLines(lines []domain.CartLine) ([]domain.CartLine, error) {
	if len(lines) == 0 {
		return nil, &errors.ErrValidation{Message: "cart needs at least one line"}
	}
	fields := make(map[string]string)
	out := make([]domain.CartLine, len(lines))
	for i, l := range lines {
		key := fmt.Sprintf("lines[%d]", i)
		id := strings.TrimSpace(l.MerchandiseID)
		if _, err := strconv.ParseInt(id, 10, 64); err == nil {
			id = variantGIDPrefix + id
		}
		if !strings.HasPrefix(id, variantGIDPrefix) || len(id) == len(variantGIDPrefix) {
			fields[key+".merchandiseId"] = "must be a variant id or ProductVariant GID"
		}
		if l.Quantity < 1 || l.Quantity > maxLineQuantity {
			fields[key+".quantity"] = fmt.Sprintf("must be between 1 and %d", maxLineQuantity)
		}
		out[i] = domain.CartLine{MerchandiseID: id, Quantity: l.Quantity}
	}
	if len(fields) > 0 {
		return nil, &errors.ErrValidation{Message: "invalid cart lines", Fields: fields}
	}
	return out, nil
}
