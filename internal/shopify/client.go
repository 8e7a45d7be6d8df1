package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/metric"
	apperrors "github.com/jafarshop/storefront/pkg/errors"
)

const (
	storefrontTokenHeader = "X-Shopify-Storefront-Access-Token"
	adminTokenHeader      = "X-Shopify-Access-Token"
)

type Client struct {
	endpoint    string
	tokenHeader string
	accessToken string
	httpClient  *http.Client
	requests    metric.IncrementalCounter
	logger      *zap.Logger
}

// NewStorefrontClient creates a Storefront API GraphQL client
func NewStorefrontClient(cfg config.ShopifyConfig, requests metric.IncrementalCounter, logger *zap.Logger) *Client {
	endpoint := fmt.Sprintf("https://%s/api/%s/graphql.json", normalizeShopDomain(cfg.ShopDomain), cfg.APIVersion)
	return newClient(endpoint, storefrontTokenHeader, cfg.StorefrontToken, requests, logger)
}

// NewAdminClient creates an Admin API GraphQL client
func NewAdminClient(cfg config.ShopifyConfig, requests metric.IncrementalCounter, logger *zap.Logger) *Client {
	endpoint := fmt.Sprintf("https://%s/admin/api/%s/graphql.json", normalizeShopDomain(cfg.ShopDomain), cfg.APIVersion)
	return newClient(endpoint, adminTokenHeader, cfg.AdminToken, requests, logger)
}

func newClient(endpoint, tokenHeader, token string, requests metric.IncrementalCounter, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:    endpoint,
		tokenHeader: tokenHeader,
		accessToken: token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		requests: requests,
		logger:   logger,
	}
}

// normalizeShopDomain removes https://, http:// and trailing slashes
func normalizeShopDomain(shopDomain string) string {
	shopDomain = strings.TrimSpace(shopDomain)
	shopDomain = strings.TrimPrefix(shopDomain, "https://")
	shopDomain = strings.TrimPrefix(shopDomain, "http://")
	return strings.TrimSuffix(shopDomain, "/")
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

// UserError is the userErrors entry returned by mutations
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// Execute executes a GraphQL query/mutation
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	reqBody := GraphQLRequest{
		Query:     query,
		Variables: variables,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.tokenHeader, c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count("error")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	c.count(strconv.Itoa(resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.ErrUpstream{Service: "shopify", Status: resp.StatusCode, Body: string(body)}
	}

	var graphQLResp GraphQLResponse
	if err := json.Unmarshal(body, &graphQLResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	if len(graphQLResp.Errors) > 0 {
		errorMessages := make([]string, len(graphQLResp.Errors))
		for i, err := range graphQLResp.Errors {
			errorMessages[i] = err.Message
		}
		return nil, fmt.Errorf("graphQL errors: %s", strings.Join(errorMessages, "; "))
	}

	return &graphQLResp, nil
}

func (c *Client) count(status string) {
	if c.requests != nil {
		c.requests.Increment("shopify", status)
	}
}

func userErrorsToError(op string, errs []UserError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	fields := make(map[string]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
		fields[strings.Join(e.Field, ".")] = e.Message
	}
	return &apperrors.ErrValidation{
		Message: fmt.Sprintf("%s: %s", op, strings.Join(msgs, "; ")),
		Fields:  fields,
	}
}
