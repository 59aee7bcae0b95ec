// Package api implements the REST clients for the accounting backend, the
// report-generation service and the OCR microservice. The backends are
// consumed as opaque services; only the envelope shapes are modeled here.
package api

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

	"github.com/thanakrit/ledgerctl/internal/common"
)

// Pagination is the listing metadata returned by paginated endpoints.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
	Total      int             `json:"total"`
	Token      string          `json:"token"`
	Refresh    string          `json:"refresh"`
}

// APIError carries a backend failure with its HTTP status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// IsServerError reports whether err is a backend 5xx response. The PDF
// poller uses this to classify a slow report server.
func IsServerError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken supplies the bearer token for authenticated requests.
func WithToken(token func() string) Option {
	return func(c *Client) { c.token = token }
}

// WithUnauthorizedHook registers a callback fired on any 401 response.
// The application wires this to wipe the persisted session.
func WithUnauthorizedHook(hook func()) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

// Client talks to the main accounting API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	token          func() string
	onUnauthorized func()
}

// NewClient creates a client for the main accounting API.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues a request and decodes the uniform response envelope. A 401
// fires the unauthorized hook and returns common.ErrUnauthorized; other
// non-2xx statuses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		slog.Warn("Session rejected by backend", "path", path)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, common.ErrUnauthorized)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	return &env, nil
}

// decodeData unmarshals the envelope payload into out.
func decodeData(env *envelope, out any) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// ListParams are the query parameters shared by paginated list endpoints.
type ListParams struct {
	Q     string
	Page  int
	Limit int
	Sort  string
}

func (p ListParams) values() url.Values {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	q := url.Values{}
	q.Set("q", p.Q)
	q.Set("page", fmt.Sprintf("%d", p.Page))
	q.Set("limit", fmt.Sprintf("%d", p.Limit))
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	return q
}
