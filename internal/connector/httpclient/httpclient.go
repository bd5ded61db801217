package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is an HTTP client with optional Bearer auth, base URL, and retry logic.
type Client struct {
	baseURL    string
	token      string
	maxBody    int64
	httpClient *http.Client
}

// APIError is a non-2xx reply. The full body is kept so callers can still
// classify what the server sent back (a sign-in page, for example).
type APIError struct {
	StatusCode  int
	ContentType string
	Body        string // first 512 bytes, for the message
	Raw         []byte
	retryAfter  string
}

// IsMarkup reports whether the server answered with an HTML page.
func (e *APIError) IsMarkup() bool {
	ct := strings.ToLower(e.ContentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Response is a successful (2xx) reply.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxBody caps the number of body bytes read. Default: 32MB.
func WithMaxBody(n int64) Option {
	return func(c *Client) {
		c.maxBody = n
	}
}

// New creates a Client for baseURL. An empty token sends no Authorization header.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		maxBody: 32 << 20,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const (
	maxRetries   = 3
	maxErrorBody = 512
	acceptHeader = "application/json, text/csv;q=0.9, */*;q=0.5"
)

// Get fetches baseURL+path and returns the body with its content type.
// Non-2xx replies come back as *APIError. 429 and 5xx are retried up to
// maxRetries times, waiting Retry-After or 1s, 2s, 4s.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var last *APIError
	for attempt := 0; ; attempt++ {
		if last != nil {
			if err := sleep(ctx, last.wait(attempt)); err != nil {
				return Response{}, err
			}
		}

		resp, apiErr, err := c.once(ctx, target)
		switch {
		case err != nil:
			return Response{}, err
		case apiErr == nil:
			return resp, nil
		case !apiErr.retryable() || attempt == maxRetries:
			return Response{}, apiErr
		}
		last = apiErr
	}
}

// once performs a single request. A non-2xx reply is reported through the
// *APIError result, transport problems through err.
func (c *Client) once(ctx context.Context, target string) (Response, *APIError, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{}, nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return Response{}, nil, err
	}
	ct := resp.Header.Get("Content-Type")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Response{StatusCode: resp.StatusCode, ContentType: ct, Body: body}, nil, nil
	}

	apiErr := &APIError{
		StatusCode:  resp.StatusCode,
		ContentType: ct,
		Body:        string(body[:min(len(body), maxErrorBody)]),
		Raw:         body,
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.retryAfter = resp.Header.Get("Retry-After")
	}
	return Response{}, apiErr, nil
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// wait is the pause before the given retry attempt (1-based).
func (e *APIError) wait(attempt int) time.Duration {
	if e.retryAfter != "" {
		if secs, err := strconv.Atoi(e.retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Second << (attempt - 1)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
