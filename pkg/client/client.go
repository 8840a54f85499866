// Package client is a cached HTTP client for the marketplace JSON API.
//
// Every read maps to a stable cache key and is kept for a short TTL so pages
// that ask for the same markets or products repeatedly hit the network once.
// Transient failures (network errors and 5xx responses) are retried a bounded
// number of times with a constant backoff.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultCacheTTL   = 5 * time.Minute
	DefaultCacheSize  = 256
	DefaultMaxRetries = 2
	DefaultBackoff    = 250 * time.Millisecond

	maxErrorBody = 4 << 10
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("api error: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries uint64
	backoff    time.Duration
	token      string
	cache      *expirable.LRU[string, []byte]
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	cacheTTL   time.Duration
	cacheSize  int
	maxRetries uint64
	backoff    time.Duration
	token      string
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout bounds each attempt, not the whole call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithCache(size int, ttl time.Duration) Option {
	return func(o *options) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}

func WithRetry(maxRetries uint64, backoff time.Duration) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
		o.backoff = backoff
	}
}

// WithBearerToken authenticates every request with a token from /auth/login.
func WithBearerToken(token string) Option {
	return func(o *options) { o.token = token }
}

// New builds a client for the API rooted at baseURL, e.g.
// "https://markets.example.com/api".
func New(baseURL string, opts ...Option) *Client {
	o := options{
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		cacheTTL:   DefaultCacheTTL,
		cacheSize:  DefaultCacheSize,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: o.httpClient,
		timeout:    o.timeout,
		maxRetries: o.maxRetries,
		backoff:    o.backoff,
		token:      o.token,
		cache:      expirable.NewLRU[string, []byte](o.cacheSize, nil, o.cacheTTL),
	}
}

func (c *Client) Markets(ctx context.Context) ([]Market, error) {
	var markets []Market
	err := c.getCached(ctx, "markets", "/markets", &markets)
	return markets, err
}

func (c *Client) Market(ctx context.Context, id uint) (Market, error) {
	var market Market
	err := c.getCached(ctx, "market:"+uitoa(id), "/markets/"+uitoa(id), &market)
	return market, err
}

// SearchMarkets backs the type-ahead box. A blank query lists every market.
func (c *Client) SearchMarkets(ctx context.Context, q string) ([]Market, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return c.Markets(ctx)
	}

	var markets []Market
	err := c.getCached(ctx, "markets:q="+q, "/markets/search?"+url.Values{"q": {q}}.Encode(), &markets)
	return markets, err
}

func (c *Client) MarketProducts(ctx context.Context, marketID uint) ([]Product, error) {
	var products []Product
	err := c.getCached(ctx, "products:market="+uitoa(marketID), "/products/market/"+uitoa(marketID), &products)
	return products, err
}

func (c *Client) UserProducts(ctx context.Context, userID uint) ([]Product, error) {
	var products []Product
	err := c.getCached(ctx, "products:user="+uitoa(userID), "/products?userId="+uitoa(userID), &products)
	return products, err
}

func (c *Client) Product(ctx context.Context, id uint) (Product, error) {
	var product Product
	err := c.getCached(ctx, "product:"+uitoa(id), "/products/"+uitoa(id), &product)
	return product, err
}

// SearchProducts pages through the product search. Zero page or limit lets
// the server pick its default.
func (c *Client) SearchProducts(ctx context.Context, q string, page, limit int) (ProductPage, error) {
	v := url.Values{}
	v.Set("q", q)
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}

	key := fmt.Sprintf("search:%s:%d:%d", q, page, limit)
	var result ProductPage
	err := c.getCached(ctx, key, "/products/search?"+v.Encode(), &result)
	return result, err
}

// Invalidate drops cached entries, for example after the caller changed one
// of its products. With no keys the whole cache is purged.
func (c *Client) Invalidate(keys ...string) {
	if len(keys) == 0 {
		c.cache.Purge()
		return
	}

	for _, k := range keys {
		c.cache.Remove(k)
	}
}

func (c *Client) getCached(ctx context.Context, key, path string, out any) error {
	body, ok := c.cache.Get(key)
	if !ok {
		var err error
		body, err = c.get(ctx, path)
		if err != nil {
			return err
		}
		c.cache.Add(key, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.cache.Remove(key)
		return fmt.Errorf("json.Unmarshal(%s) -> %w", path, err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewConstant(c.backoff))

	var body []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		body, err = c.attempt(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// attempt performs one request. Errors worth retrying are wrapped with
// retry.RetryableError.
func (c *Client) attempt(ctx context.Context, path string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, retry.RetryableError(fmt.Errorf("c.httpClient.Do -> %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeAPIError(resp)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, retry.RetryableError(apiErr)
		}
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("io.ReadAll -> %w", err))
	}

	return body, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, apiErr)
	apiErr.StatusCode = resp.StatusCode

	return apiErr
}

func uitoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
