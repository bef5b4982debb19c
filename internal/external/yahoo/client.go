package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/divradar/backend/pkg/config"
	"github.com/divradar/backend/pkg/httputil"
	"github.com/divradar/backend/pkg/logger"
	"github.com/divradar/backend/pkg/redis"
)

// Client handles communication with the Yahoo Finance endpoints.
// All provider API calls go through this client; a token-bucket limiter
// paces every request regardless of which importer triggered it.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.ProviderConfig
	limiter    *rate.Limiter
	shared     *redis.RateLimiter
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg.Provider,
		limiter:    rate.NewLimiter(rate.Limit(cfg.Provider.RequestsPerSec), cfg.Provider.Burst),
	}
}

// WithSharedLimiter layers a cross-process sliding window on top of the
// local token bucket. Each endpoint waits on its own window so quote
// batches do not starve chart or summary traffic.
func (c *Client) WithSharedLimiter(limiter *redis.RateLimiter) *Client {
	c.shared = limiter
	return c
}

// browser-like headers; the provider rejects default Go user agents
var defaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Accept":     "application/json, text/html;q=0.9",
}

// fetch performs a rate-limited GET and returns the response body
func (c *Client) fetch(ctx context.Context, url string, window redis.RateLimitConfig) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	if c.shared != nil {
		if err := c.shared.Wait(ctx, window); err != nil {
			return nil, fmt.Errorf("shared rate limit wait failed: %w", err)
		}
	}

	resp, err := c.httpClient.GetWithHeaders(ctx, url, defaultHeaders)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	// 404 from the quote/chart endpoints means unknown symbol; the body
	// still carries a structured error the parsers surface properly.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}
