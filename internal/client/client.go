// Package client is the HTTP transport for the image server REST API.
//
// Every call takes a context and returns either decoded JSON or one of three
// failure kinds: a validation error (wrapping validation.ErrInvalid, no request
// was sent), ErrUnreachable (no response), or *APIError (non-2xx response, with
// the server's "detail" message when it sent one). Calls are never retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL   = "http://127.0.0.1:8000"
	DefaultUserAgent = "imagehost-cli/1.0"

	// maxErrorBody caps how much of an error response is read for its detail
	maxErrorBody = 64 << 10
)

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       *slog.Logger
	timeout   *time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Transport is wrapped, not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		clone := *hc
		c.http = &clone
	}
}

// WithTimeout sets a whole-request timeout. Zero means none. It applies to the
// http.Client given by WithHTTPClient whatever the option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = &d
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client for the API at baseURL.
// Accepts "http://host:port", "host:port" (http assumed) and base URLs with a path prefix.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{},
		userAgent: DefaultUserAgent,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		c.http.Timeout = *c.timeout
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http.Transport = chain(base,
		withLogging(c.log),
		withHeaders(c.userAgent),
	)

	return c, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q: missing host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u, nil
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(segments ...string) string {
	return c.baseURL.JoinPath(segments...).String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return req, nil
}

// send executes req and turns transport errors and non-2xx statuses into client errors.
// On success the caller owns resp.Body.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		ctxErr := req.Context().Err()
		if ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("request %s %s canceled: %w", req.Method, req.URL.Path, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnreachable, req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(body),
		}
	}

	return resp, nil
}

// do sends req and decodes a JSON response into out (nil discards the body)
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) delete(ctx context.Context, target string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// stream copies a successful response body into w
func (c *Client) stream(ctx context.Context, target, accept string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", accept)

	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read %s: %w", req.URL.Path, err)
	}
	return n, nil
}

func (c *Client) getText(ctx context.Context, target string) (string, error) {
	var buf bytes.Buffer
	_, err := c.stream(ctx, target, "text/plain", &buf)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
