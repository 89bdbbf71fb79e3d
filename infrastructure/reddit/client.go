// Package reddit fetches public thread and listing data from Reddit's JSON
// endpoints. The client is stateless; every fetch is a pure function of the
// requested URL.
package reddit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/threadlens/threadlens/domain/thread"
)

// Defaults for the HTTP client.
const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "threadlens/1.0 (research tool)"

	defaultBaseURL = "https://www.reddit.com"

	// maxBodyBytes bounds how much of a response is read. Very large threads
	// get truncated during formatting anyway.
	maxBodyBytes = 8 << 20
)

// ErrNotFound indicates the thread or subreddit does not exist, or has been
// deleted or made private.
var ErrNotFound = errors.New("thread not found")

// FetchError describes a failed fetch from the content source.
type FetchError struct {
	url        string
	statusCode int
	cause      error
}

// NewFetchError creates a FetchError. statusCode is zero for transport
// errors.
func NewFetchError(url string, statusCode int, cause error) *FetchError {
	return &FetchError{url: url, statusCode: statusCode, cause: cause}
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("fetch %s: %v", e.url, e.cause)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.url, e.statusCode)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error { return e.cause }

// StatusCode returns the upstream HTTP status, zero for transport errors.
func (e *FetchError) StatusCode() int { return e.statusCode }

// Client fetches thread and listing JSON from Reddit.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithBaseURL redirects requests to a different host. Used by tests to point
// the client at a local server.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithUserAgent sets the User-Agent header sent upstream. Reddit throttles
// default library agents aggressively, so the client always sends one.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a Client with defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    defaultBaseURL,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchThread retrieves and decodes the comment tree for a normalized thread
// URL (as produced by thread.NormalizeURL).
func (c *Client) FetchThread(ctx context.Context, normalizedURL string) (thread.Thread, error) {
	body, err := c.get(ctx, c.rewrite(normalizedURL))
	if err != nil {
		return thread.Thread{}, err
	}

	t, err := DecodeThread(body)
	if err != nil {
		return thread.Thread{}, &FetchError{url: normalizedURL, cause: err}
	}
	return t, nil
}

// FetchHot retrieves the hot listing for a subreddit, up to limit posts.
func (c *Client) FetchHot(ctx context.Context, subreddit string, limit int) ([]Submission, error) {
	u := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", c.baseURL, url.PathEscape(subreddit), limit)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	subs, err := DecodeListing(body)
	if err != nil {
		return nil, &FetchError{url: u, cause: err}
	}
	return subs, nil
}

// rewrite maps a canonical reddit URL onto the configured base URL.
func (c *Client) rewrite(u string) string {
	if c.baseURL == defaultBaseURL {
		return u
	}
	return c.baseURL + strings.TrimPrefix(u, defaultBaseURL)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{url: u, cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{url: u, cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
		return nil, &FetchError{url: u, statusCode: resp.StatusCode, cause: ErrNotFound}
	default:
		return nil, &FetchError{url: u, statusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{url: u, cause: err}
	}
	return body, nil
}
