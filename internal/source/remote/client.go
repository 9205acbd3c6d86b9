package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/nhle/tasklite/internal/source"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 8 << 20

var errBodyTooLarge = errors.New("response exceeds 8 MiB")

// Client is a thin HTTP client for a remote task collection. The
// collection is fetched with one GET and must be a JSON array of
// {title, completed} objects.
type Client struct {
	url        string
	httpClient *http.Client
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxRetries enables retrying HTTP 429 responses up to n times.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// NewClient creates a client for the collection at url. Timeouts are
// controlled by the caller's context; the HTTP client itself has a 60s
// ceiling.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the collection endpoint.
func (c *Client) URL() string {
	return c.url
}

// FetchTasks implements source.RemoteTaskSource.
func (c *Client) FetchTasks(ctx context.Context) ([]source.RemoteTask, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		tasks, resp, err := c.fetchOnce(ctx)
		if err == nil {
			return tasks, nil
		}

		if resp == nil || resp.StatusCode != http.StatusTooManyRequests || attempt == c.maxRetries {
			return nil, err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, c.fetchError(0, ctx.Err())
		case <-time.After(retryAfterDuration(resp, attempt)):
		}
	}

	return nil, lastErr
}

// fetchOnce performs a single GET. The response is returned alongside
// the error so the caller can inspect the status code.
func (c *Client) fetchOnce(ctx context.Context) ([]source.RemoteTask, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, nil, c.fetchError(0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, c.fetchError(0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, resp, c.fetchError(resp.StatusCode, fmt.Errorf("reading response body: %w", err))
	}
	if len(body) > maxBodySize {
		return nil, resp, c.fetchError(resp.StatusCode, errBodyTooLarge)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, c.fetchError(resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
	}

	tasks, err := decodeTasks(body)
	if err != nil {
		return nil, resp, c.fetchError(resp.StatusCode, err)
	}
	return tasks, resp, nil
}

func (c *Client) fetchError(status int, err error) *source.RemoteFetchError {
	return &source.RemoteFetchError{URL: c.url, StatusCode: status, Err: err}
}

// decodeTasks parses a JSON array of remote tasks. A top-level null is
// treated as an empty collection.
func decodeTasks(body []byte) ([]source.RemoteTask, error) {
	var tasks []source.RemoteTask
	if err := sonic.ConfigStd.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if tasks == nil {
		tasks = []source.RemoteTask{}
	}
	return tasks, nil
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
