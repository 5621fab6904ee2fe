package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/macrolens/basket/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client defaults
const (
	defaultRequestsPerSecond = 5.0
	defaultBurst             = 10
	defaultTimeout           = 10 * time.Second
	defaultPageSize          = 20
	maxAttempts              = 3
)

// ClientConfig holds configuration for a storefront API client
type ClientConfig struct {
	BaseURL           string
	APIKey            string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	PageSize          int
}

// Client handles communication with one storefront product search API
type Client struct {
	http        *resty.Client
	apiKey      string
	baseURL     string
	pageSize    int
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	logger      *zap.Logger
	debug       bool
}

// NewClient creates a new storefront API client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "Basket/1.0").
		SetHeader("Accept", "application/json")

	return &Client{
		http:        httpClient,
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		pageSize:    cfg.PageSize,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		backoff:     exponentialBackoff,
		logger:      logger,
	}
}

// SetDebug enables or disables request/response debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the wait before retrying after the given attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// SearchProducts searches the storefront for products matching term.
// A 404 means the storefront knows no such products and yields an empty slice.
func (c *Client) SearchProducts(ctx context.Context, term string) ([]RemoteProduct, error) {
	if c.debug {
		c.logger.Debug("storefront search", zap.String("base_url", c.baseURL), zap.String("term", term))
	}

	// Retry up to maxAttempts times for transient failures
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.backoff(attempt-1)); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
			}
		}

		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrSourceUnavailable, err)
		}

		req := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"q":     term,
				"limit": strconv.Itoa(c.pageSize),
			})
		if c.apiKey != "" {
			req.SetHeader("X-API-Key", c.apiKey)
		}

		resp, err := req.Get("/v1/products/search")
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, ctx.Err())
			}
			c.logger.Warn("storefront request error",
				zap.String("base_url", c.baseURL), zap.Int("attempt", attempt), zap.Error(err))
			lastErr = fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
			continue
		}

		switch status := resp.StatusCode(); {
		case status == http.StatusOK:
			var searchResp SearchResponse
			if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
				return nil, fmt.Errorf("%w: malformed response: %v", domain.ErrSourceUnavailable, err)
			}
			if c.debug {
				c.logger.Debug("storefront search done",
					zap.String("term", term), zap.Int("products", len(searchResp.Products)))
			}
			if searchResp.Products == nil {
				searchResp.Products = []RemoteProduct{}
			}
			return searchResp.Products, nil

		case status == http.StatusNotFound:
			return []RemoteProduct{}, nil

		case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
			c.logger.Warn("storefront API error",
				zap.String("base_url", c.baseURL), zap.Int("attempt", attempt), zap.Int("status", status))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, status)

		default:
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrSourceUnavailable, status, truncate(resp.String(), 200))
		}
	}

	return nil, lastErr
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// truncate caps s at n bytes without splitting a multi-byte rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
