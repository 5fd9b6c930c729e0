// ABOUTME: Authenticated GraphQL client for the Shopify Admin API
// ABOUTME: Retries transient statuses with exponential backoff behind the rate limiter

package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nainya/metawrite/internal/logger"
	"github.com/nainya/metawrite/internal/metrics"
)

// DefaultAPIVersion is the Admin API version used when none is configured.
const DefaultAPIVersion = "2024-10"

const defaultMaxRetries = 3

// Statuses worth retrying: throttling and transient server failures.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Config holds client configuration.
type Config struct {
	ShopDomain  string // e.g. "your-shop.myshopify.com"
	AccessToken string // Admin API access token
	APIVersion  string // defaults to DefaultAPIVersion
	BaseURL     string // overrides the derived endpoint; for local test servers
	MaxRetries  int    // defaults to 3
	HTTPClient  *http.Client
	Limiter     *RateLimiter
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
}

// Client executes GraphQL documents against one shop's Admin API. It is safe
// for concurrent use; pacing is shared through the rate limiter.
type Client struct {
	baseURL     string
	accessToken string
	maxRetries  int
	httpClient  *http.Client
	limiter     *RateLimiter
	log         *logger.Logger
	metrics     *metrics.Metrics
}

// NewClient creates an Admin API client for the configured shop.
func NewClient(cfg Config) (*Client, error) {
	domain := strings.TrimSuffix(strings.TrimSpace(cfg.ShopDomain), "/")
	if domain == "" || cfg.AccessToken == "" {
		return nil, ErrMissingCredentials
	}

	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRequestsPerSecond, DefaultBurstSize)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s/admin/api/%s", domain, version)
	}

	return &Client{
		baseURL:     baseURL,
		accessToken: cfg.AccessToken,
		maxRetries:  maxRetries,
		httpClient:  httpClient,
		limiter:     limiter,
		log:         log,
		metrics:     cfg.Metrics,
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute runs a GraphQL query or mutation and returns the data payload.
// It blocks on rate limiter admission, then retries transient HTTP failures
// (429, 500, 502, 503, 504 and connection errors) with exponential backoff
// before giving up. Top-level GraphQL errors fail the call.
func (c *Client) Execute(ctx context.Context, document string, variables map[string]any) (json.RawMessage, error) {
	if variables == nil {
		variables = map[string]any{}
	}
	operation := operationName(document)
	requestID := uuid.NewString()
	alog := c.log.APILogger(operation, requestID)

	body, err := json.Marshal(graphQLRequest{Query: document, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("shopify: encode request: %w", err)
	}

	wait := c.limiter.Admit()
	c.metrics.RecordRateLimitWait(wait)
	if wait > 0 {
		alog.Debug("Rate limiter delayed request").Dur("wait_ms", wait).Send()
	}

	start := time.Now()
	data, err := c.post(ctx, alog, requestID, body)
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordAPIRequest(operation, status, time.Since(start))
	if err != nil {
		alog.Error("Admin API request failed").Err(err).Send()
		return nil, err
	}
	return data, nil
}

// post performs the HTTP exchange with the retry loop.
func (c *Client) post(ctx context.Context, alog *logger.Logger, requestID string, body []byte) (json.RawMessage, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.RecordAPIRetry()
			// 1s, 2s, 4s like the platform's documented backoff guidance.
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			alog.Warn("Retrying Admin API request").
				Int("attempt", attempt).
				Dur("backoff_ms", backoff).
				Send()
			if err := sleepContext(ctx, backoff); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql.json", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("shopify: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Shopify-Access-Token", c.accessToken)
		req.Header.Set("X-Request-ID", requestID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if retryableStatus[resp.StatusCode] {
			lastErr = &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: snippet(respBody)}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: snippet(respBody)}
		}

		var parsed graphQLResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, fmt.Errorf("shopify: decode response: %w", err)
		}
		if len(parsed.Errors) > 0 {
			messages := make([]string, len(parsed.Errors))
			for i, e := range parsed.Errors {
				messages[i] = e.Message
			}
			return nil, &ProtocolError{Messages: messages}
		}
		return parsed.Data, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.maxRetries+1, lastErr)
}

// operationName extracts the name following "query" or "mutation" for log and
// metric labels; anonymous documents label as "graphql".
func operationName(document string) string {
	fields := strings.Fields(document)
	for i, f := range fields {
		if f != "query" && f != "mutation" {
			continue
		}
		if i+1 >= len(fields) {
			break
		}
		name := fields[i+1]
		if idx := strings.IndexAny(name, "({"); idx >= 0 {
			name = name[:idx]
		}
		if name != "" {
			return name
		}
	}
	return "graphql"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
