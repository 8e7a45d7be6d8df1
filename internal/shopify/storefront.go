package shopify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	apperrors "github.com/jafarshop/storefront/pkg/errors"
)

// menuItemNode is used to parse nested menu items
type menuItemNode struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	URL        *string        `json:"url"`
	Type       string         `json:"type"`
	ResourceID *string        `json:"resourceId"`
	Items      []menuItemNode `json:"items"`
}

func toMenuNodes(items []menuItemNode) []domain.MenuNode {
	nodes := make([]domain.MenuNode, 0, len(items))
	for _, item := range items {
		node := domain.MenuNode{
			ID:    item.ID,
			Title: item.Title,
			Items: toMenuNodes(item.Items),
		}
		if item.URL != nil {
			node.URL = *item.URL
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// GetMenu fetches a navigation menu by handle. A menu Shopify does not know
// returns ErrNotFound.
func (c *Client) GetMenu(ctx context.Context, handle string) (*domain.Menu, error) {
	resp, err := c.Execute(ctx, MenuByHandleQuery, map[string]interface{}{"handle": handle})
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}

	var result struct {
		Menu *struct {
			Handle string         `json:"handle"`
			Title  string         `json:"title"`
			Items  []menuItemNode `json:"items"`
		} `json:"menu"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse menu response: %w", err)
	}
	if result.Menu == nil {
		return nil, &apperrors.ErrNotFound{Resource: "menu", ID: handle}
	}

	return &domain.Menu{
		Handle: result.Menu.Handle,
		Title:  result.Menu.Title,
		Items:  toMenuNodes(result.Menu.Items),
	}, nil
}

type imageNode struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

func (i *imageNode) toDomain() *domain.Image {
	if i == nil {
		return nil
	}
	return &domain.Image{URL: i.URL, AltText: i.AltText}
}

// GetCollection fetches a collection by handle with one page of products
func (c *Client) GetCollection(ctx context.Context, handle, cursor string, first int) (*domain.Collection, error) {
	variables := map[string]interface{}{
		"handle": handle,
		"first":  first,
	}
	if cursor != "" {
		variables["after"] = cursor
	}

	resp, err := c.Execute(ctx, CollectionByHandleQuery, variables)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}

	var result struct {
		Collection *struct {
			ID          string     `json:"id"`
			Handle      string     `json:"handle"`
			Title       string     `json:"title"`
			Description string     `json:"description"`
			Image       *imageNode `json:"image"`
			Products    struct {
				PageInfo domain.PageInfo `json:"pageInfo"`
				Nodes    []struct {
					ID               string `json:"id"`
					Handle           string `json:"handle"`
					Title            string `json:"title"`
					AvailableForSale bool   `json:"availableForSale"`
					PriceRange       struct {
						MinVariantPrice domain.Money `json:"minVariantPrice"`
					} `json:"priceRange"`
					FeaturedImage *imageNode `json:"featuredImage"`
				} `json:"nodes"`
			} `json:"products"`
		} `json:"collection"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse collection response: %w", err)
	}
	if result.Collection == nil {
		return nil, &apperrors.ErrNotFound{Resource: "collection", ID: handle}
	}

	coll := result.Collection
	products := make([]domain.ProductSummary, 0, len(coll.Products.Nodes))
	for _, p := range coll.Products.Nodes {
		products = append(products, domain.ProductSummary{
			ID:               p.ID,
			Handle:           p.Handle,
			Title:            p.Title,
			AvailableForSale: p.AvailableForSale,
			MinPrice:         p.PriceRange.MinVariantPrice,
			FeaturedImage:    p.FeaturedImage.toDomain(),
		})
	}

	return &domain.Collection{
		ID:          coll.ID,
		Handle:      coll.Handle,
		Title:       coll.Title,
		Description: coll.Description,
		Image:       coll.Image.toDomain(),
		Products:    products,
		PageInfo:    coll.Products.PageInfo,
	}, nil
}

// GetProduct fetches a product by handle
func (c *Client) GetProduct(ctx context.Context, handle string) (*domain.Product, error) {
	resp, err := c.Execute(ctx, ProductByHandleQuery, map[string]interface{}{"handle": handle})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	var result struct {
		Product *struct {
			ID              string   `json:"id"`
			Handle          string   `json:"handle"`
			Title           string   `json:"title"`
			Vendor          string   `json:"vendor"`
			DescriptionHTML string   `json:"descriptionHtml"`
			Tags            []string `json:"tags"`
			Images          struct {
				Nodes []domain.Image `json:"nodes"`
			} `json:"images"`
			Variants struct {
				Nodes []domain.Variant `json:"nodes"`
			} `json:"variants"`
			Collections struct {
				Nodes []domain.CollectionLink `json:"nodes"`
			} `json:"collections"`
		} `json:"product"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse product response: %w", err)
	}
	if result.Product == nil {
		return nil, &apperrors.ErrNotFound{Resource: "product", ID: handle}
	}

	p := result.Product
	return &domain.Product{
		ID:              p.ID,
		Handle:          p.Handle,
		Title:           p.Title,
		Vendor:          p.Vendor,
		DescriptionHTML: p.DescriptionHTML,
		Tags:            p.Tags,
		Images:          nonNil(p.Images.Nodes),
		Variants:        nonNil(p.Variants.Nodes),
		Collections:     nonNil(p.Collections.Nodes),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type cartPayload struct {
	Cart *struct {
		ID            string `json:"id"`
		CheckoutURL   string `json:"checkoutUrl"`
		TotalQuantity int    `json:"totalQuantity"`
		Cost          struct {
			SubtotalAmount domain.Money `json:"subtotalAmount"`
		} `json:"cost"`
	} `json:"cart"`
	UserErrors []UserError `json:"userErrors"`
}

func (p cartPayload) toDomain(op string) (*domain.Cart, error) {
	if err := userErrorsToError(op, p.UserErrors); err != nil {
		return nil, err
	}
	if p.Cart == nil {
		return nil, fmt.Errorf("%s: response has no cart", op)
	}
	return &domain.Cart{
		ID:          p.Cart.ID,
		CheckoutURL: p.Cart.CheckoutURL,
		TotalQty:    p.Cart.TotalQuantity,
		Subtotal:    p.Cart.Cost.SubtotalAmount,
	}, nil
}

func toLineInputs(lines []domain.CartLine) []CartLineInput {
	inputs := make([]CartLineInput, len(lines))
	for i, l := range lines {
		inputs[i] = CartLineInput{MerchandiseID: l.MerchandiseID, Quantity: l.Quantity}
	}
	return inputs
}

// CreateCart creates a cart with the given lines
func (c *Client) CreateCart(ctx context.Context, lines []domain.CartLine) (*domain.Cart, error) {
	variables := map[string]interface{}{
		"input": CartInput{Lines: toLineInputs(lines)},
	}
	resp, err := c.Execute(ctx, CartCreateMutation, variables)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	var result struct {
		CartCreate cartPayload `json:"cartCreate"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse cart create response: %w", err)
	}
	cart, err := result.CartCreate.toDomain("cartCreate")
	if err != nil {
		return nil, err
	}
	c.logger.Info("Created Shopify cart", zap.String("cart_id", cart.ID), zap.Int("lines", len(lines)))
	return cart, nil
}

// AddCartLines adds lines to an existing cart
func (c *Client) AddCartLines(ctx context.Context, cartID string, lines []domain.CartLine) (*domain.Cart, error) {
	variables := map[string]interface{}{
		"cartId": cartID,
		"lines":  toLineInputs(lines),
	}
	resp, err := c.Execute(ctx, CartLinesAddMutation, variables)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart lines: %w", err)
	}

	var result struct {
		CartLinesAdd cartPayload `json:"cartLinesAdd"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse cart lines add response: %w", err)
	}
	return result.CartLinesAdd.toDomain("cartLinesAdd")
}

// MenuSummary is a menu as listed by the Admin API
type MenuSummary struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

// ListMenus lists all navigation menus. Must be called on an Admin client.
func (c *Client) ListMenus(ctx context.Context) ([]MenuSummary, error) {
	resp, err := c.Execute(ctx, MenusQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	var result struct {
		Menus struct {
			Nodes []MenuSummary `json:"nodes"`
		} `json:"menus"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse menus response: %w", err)
	}
	return result.Menus.Nodes, nil
}
