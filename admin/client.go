package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/jonwraymond/opsdash/auth"
	"github.com/jonwraymond/opsdash/cache"
)

// DefaultRetries is how many attempts a request gets on transient failure.
const DefaultRetries = 3

// Error is a failed admin request.
type Error struct {
	URL    string
	Method string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("admin: %s %s: %d: %v", e.Method, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("admin: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client calls the cache admin endpoints of one server.
type Client struct {
	baseURL string
	client  *http.Client
	header  http.Header
	retry   retryPolicy
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithAPIKey authenticates with an API key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if key != "" {
			c.header.Set(auth.DefaultAPIKeyHeader, key)
		}
	}
}

// WithBearerToken authenticates with a JWT bearer token.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.header.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithRetries sets the attempt count and the initial backoff between
// attempts, which doubles each time.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retry.attempts = max(n, 1)
		c.retry.initial = backoff
	}
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("admin: invalid base url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		header:  make(http.Header),
		retry: retryPolicy{
			attempts: DefaultRetries,
			initial:  150 * time.Millisecond,
			max:      5 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Stats returns the server's cache statistics.
func (c *Client) Stats(ctx context.Context) (cache.StatsReport, error) {
	var out cache.StatsReport
	err := c.do(ctx, http.MethodGet, cache.AdminStatsPath, &out)
	return out, err
}

// Clear removes every entry, or only keys containing pattern when it is
// non-empty.
func (c *Client) Clear(ctx context.Context, pattern string) (cache.ClearReport, error) {
	target := cache.AdminClearPath
	if pattern != "" {
		target += "?" + url.Values{"pattern": {pattern}}.Encode()
	}
	var out cache.ClearReport
	err := c.do(ctx, http.MethodDelete, target, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, target string, out any) error {
	u := c.baseURL + target

	var (
		resp   *http.Response
		status int
	)
	err := c.retry.do(ctx, func(ctx context.Context) (bool, error) {
		status = 0
		req, err := http.NewRequestWithContext(ctx, method, u, nil)
		if err != nil {
			return false, err
		}
		req.Header = c.header.Clone()
		req.Header.Set("Accept", "application/json")

		r, err := c.client.Do(req)
		if err != nil {
			return shouldRetry(method, nil, err), err
		}
		status = r.StatusCode
		if shouldRetry(method, r, nil) {
			_, _ = io.Copy(io.Discard, r.Body)
			r.Body.Close()
			return true, fmt.Errorf("server returned %s", r.Status)
		}
		resp = r
		return false, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &Error{URL: u, Method: method, Status: status, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{URL: u, Method: method, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &Error{URL: u, Method: method, Status: resp.StatusCode, Body: string(body), Err: errors.New(msg)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{URL: u, Method: method, Status: resp.StatusCode, Body: string(body), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// shouldRetry reports whether a failed attempt may be repeated. Only GET is
// retried once the server may have acted on the request.
func shouldRetry(method string, resp *http.Response, err error) bool {
	idempotent := method == http.MethodGet
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return true
		}
		return idempotent && errors.Is(err, syscall.ECONNRESET)
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return idempotent
	}
	return false
}
