package strapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metric"
	apperrors "github.com/jafarshop/storefront/pkg/errors"
)

// Client reads published content from Strapi with an API token
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	requests   metric.IncrementalCounter
	logger     *zap.Logger
}

// NewClient creates a Strapi HTTP client
func NewClient(cfg config.StrapiConfig, requests metric.IncrementalCounter, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		requests:   requests,
		logger:     logger,
	}
}

// pageFields covers both the Strapi v5 flat shape and the v4 attributes wrapper
type pageFields struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"publishedAt"`
}

type pageEntry struct {
	ID int `json:"id"`
	pageFields
	Attributes *pageFields `json:"attributes"`
}

type pagesResponse struct {
	Data []pageEntry `json:"data"`
}

// GetPage fetches a published page by slug
func (c *Client) GetPage(ctx context.Context, slug string) (*domain.Page, error) {
	if c.baseURL == "" {
		return nil, &apperrors.ErrNotConfigured{Service: "strapi"}
	}
	u, err := url.Parse(c.baseURL + "/api/pages")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("filters[slug][$eq]", slug)
	q.Set("populate", "*")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count("error")
		c.logger.Warn("Strapi page request failed", zap.Error(err), zap.String("slug", slug))
		return nil, err
	}
	defer resp.Body.Close()
	c.count(strconv.Itoa(resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &apperrors.ErrUpstream{Service: "strapi", Status: resp.StatusCode, Body: string(body)}
	}

	var out pagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse pages response: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, &apperrors.ErrNotFound{Resource: "page", ID: slug}
	}

	entry := out.Data[0]
	fields := entry.pageFields
	if entry.Attributes != nil {
		fields = *entry.Attributes
	}
	return &domain.Page{
		ID:          entry.ID,
		Slug:        fields.Slug,
		Title:       fields.Title,
		Content:     fields.Content,
		PublishedAt: fields.PublishedAt,
	}, nil
}

func (c *Client) count(status string) {
	if c.requests != nil {
		c.requests.Increment("strapi", status)
	}
}
