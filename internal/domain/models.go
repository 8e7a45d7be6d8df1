package domain

import (
	"time"

	"github.com/google/uuid"
)

// MenuNode is one entry of a storefront navigation menu.
// URL is empty when the provider sent no url for the item.
type MenuNode struct {
	ID    string     `json:"id"`
	Title string     `json:"title,omitempty"`
	URL   string     `json:"url,omitempty"`
	Items []MenuNode `json:"items"`
}

// Menu is a navigation menu fetched by handle
type Menu struct {
	Handle string     `json:"handle"`
	Title  string     `json:"title,omitempty"`
	Items  []MenuNode `json:"items"`
}

// Money is a Shopify MoneyV2 value
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Image is a product or collection image
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
}

// PageInfo carries cursor pagination state
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor,omitempty"`
}

// ProductSummary is a product as listed inside a collection
type ProductSummary struct {
	ID               string `json:"id"`
	Handle           string `json:"handle"`
	Title            string `json:"title"`
	AvailableForSale bool   `json:"availableForSale"`
	MinPrice         Money  `json:"minPrice"`
	FeaturedImage    *Image `json:"featuredImage,omitempty"`
}

// Collection is a Shopify collection with one page of products
type Collection struct {
	ID          string           `json:"id"`
	Handle      string           `json:"handle"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Image       *Image           `json:"image,omitempty"`
	Products    []ProductSummary `json:"products"`
	PageInfo    PageInfo         `json:"pageInfo"`
}

// Variant is a purchasable product variant
type Variant struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	SKU              string `json:"sku,omitempty"`
	AvailableForSale bool   `json:"availableForSale"`
	Price            Money  `json:"price"`
	CompareAtPrice   *Money `json:"compareAtPrice,omitempty"`
}

// CollectionLink references a collection a product belongs to
type CollectionLink struct {
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

// Product is a full product detail
type Product struct {
	ID              string           `json:"id"`
	Handle          string           `json:"handle"`
	Title           string           `json:"title"`
	Vendor          string           `json:"vendor,omitempty"`
	DescriptionHTML string           `json:"descriptionHtml,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	Images          []Image          `json:"images"`
	Variants        []Variant        `json:"variants"`
	Collections     []CollectionLink `json:"collections"`
}

// CartLine is one line to put into a cart
type CartLine struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// Cart is a Shopify cart; checkout happens on CheckoutURL
type Cart struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
	TotalQty    int    `json:"totalQuantity"`
	Subtotal    Money  `json:"subtotal"`
}

// Page is a CMS page served from Strapi
type Page struct {
	ID          int       `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Subscriber is a newsletter signup recorded locally
type Subscriber struct {
	ID          uuid.UUID
	Email       string
	Status      SubscriberStatus
	MailchimpID *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyKey stores the cart created for a client-supplied key
type IdempotencyKey struct {
	Key         string
	CartID      string
	CheckoutURL string
	RequestHash string
	CreatedAt   time.Time
}
