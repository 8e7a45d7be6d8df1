package mailchimp

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
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

// Client calls the Mailchimp Marketing API with an API key
type Client struct {
	baseURL    string
	apiKey     string
	listID     string
	httpClient *http.Client
	requests   metric.IncrementalCounter
	logger     *zap.Logger
}

// NewClient creates a Mailchimp client. The datacenter is the API key suffix
// (abc123-us21 -> us21.api.mailchimp.com).
func NewClient(cfg config.MailchimpConfig, requests metric.IncrementalCounter, logger *zap.Logger) *Client {
	dc := "us1"
	if i := strings.LastIndex(cfg.APIKey, "-"); i >= 0 && i < len(cfg.APIKey)-1 {
		dc = cfg.APIKey[i+1:]
	}
	return newClient(fmt.Sprintf("https://%s.api.mailchimp.com/3.0", dc), cfg, requests, logger)
}

func newClient(baseURL string, cfg config.MailchimpConfig, requests metric.IncrementalCounter, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		listID:     cfg.ListID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		requests:   requests,
		logger:     logger,
	}
}

// Member is the subset of a Mailchimp list member we keep
type Member struct {
	ID           string                  `json:"id"`
	EmailAddress string                  `json:"email_address"`
	Status       domain.SubscriberStatus `json:"status"`
}

type upsertMemberRequest struct {
	EmailAddress string            `json:"email_address"`
	StatusIfNew  string            `json:"status_if_new"`
	MergeFields  map[string]string `json:"merge_fields,omitempty"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// SubscriberHash is the member id Mailchimp derives from an email address
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// Subscribe adds email to the list, or leaves an existing member's status untouched.
func (c *Client) Subscribe(ctx context.Context, email string, mergeFields map[string]string) (*Member, error) {
	if c.apiKey == "" || c.listID == "" {
		return nil, &apperrors.ErrNotConfigured{Service: "mailchimp"}
	}

	body, err := json.Marshal(upsertMemberRequest{
		EmailAddress: strings.TrimSpace(email),
		StatusIfNew:  string(domain.SubscriberStatusSubscribed),
		MergeFields:  mergeFields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/lists/%s/members/%s", c.baseURL, url.PathEscape(c.listID), SubscriberHash(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth("storefront", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count("error")
		c.logger.Warn("Mailchimp subscribe request failed", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	c.count(strconv.Itoa(resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Detail != "" {
			return nil, &apperrors.ErrValidation{Message: apiErr.Detail}
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.ErrUpstream{Service: "mailchimp", Status: resp.StatusCode, Body: string(raw)}
	}

	var member Member
	if err := json.Unmarshal(raw, &member); err != nil {
		return nil, fmt.Errorf("failed to parse member response: %w", err)
	}
	return &member, nil
}

func (c *Client) count(status string) {
	if c.requests != nil {
		c.requests.Increment("mailchimp", status)
	}
}
