package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/natalchart/pkg/cache"
	"github.com/matzehuels/natalchart/pkg/httputil"
	"github.com/matzehuels/natalchart/pkg/observability"
)

// Client provides shared HTTP functionality for the API clients.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	prefix  string
	ttl     time.Duration
	headers map[string]string
	policy  httputil.Policy
}

// NewClient creates a Client caching under prefix with the given default
// TTL. A nil cache disables caching.
func NewClient(c cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   c,
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,
		policy:  httputil.DefaultPolicy,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// SetRetryPolicy replaces the retry policy used by Cached.
func (c *Client) SetRetryPolicy(p httputil.Policy) { c.policy = p }

// Cached fills v from the cache or by running fetch, which is retried on
// transient errors. A successful fetch is stored for the client's TTL.
// refresh skips the lookup. hit reports whether v came from the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) (hit bool, err error) {
	return c.CachedFor(ctx, key, c.ttl, refresh, v, fetch)
}

// CachedFor is Cached with an explicit TTL.
func (c *Client) CachedFor(ctx context.Context, key string, ttl time.Duration, refresh bool, v any, fetch func() error) (bool, error) {
	kind := keyType(key)
	key = c.prefix + key
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok && json.Unmarshal(data, v) == nil {
			observability.Cache().OnCacheHit(ctx, kind)
			return true, nil
		}
		observability.Cache().OnCacheMiss(ctx, kind)
	}
	if err := httputil.Retry(ctx, c.policy, fetch); err != nil {
		return false, err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, ttl) == nil {
			observability.Cache().OnCacheSet(ctx, kind, len(data))
		}
	}
	return false, nil
}

// PostForm posts form as application/x-www-form-urlencoded and decodes the
// JSON reply into v.
func (c *Client) PostForm(ctx context.Context, endpoint string, form url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent())
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: empty response", ErrNotFound)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// keyType is the leading segment of a cache key ("chart", "location").
func keyType(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}

func (c *Client) do(req *http.Request) (io.ReadCloser, error) {
	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
