// Package client is a small HTTP client for the legalqa API, used by the CLI
// commands that talk to a running server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/legalqa/api"
	"github.com/papercomputeco/legalqa/pkg/qa"
)

const defaultTimeout = 30 * time.Second

// APIError is returned when the server answers with a non-200 status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("legalqa API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// Client calls the legalqa HTTP API.
type Client struct {
	target     *url.URL
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client for the API served at target, e.g. http://localhost:8001.
func New(target string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(target, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API target URL: %q", target)
	}

	c := &Client{
		target:     u,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Target returns the base URL of the API.
func (c *Client) Target() string {
	return c.target.String()
}

func (c *Client) Health(ctx context.Context) (*qa.Health, error) {
	var out qa.Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ask posts a question and returns the answer with its sources.
func (c *Client) Ask(ctx context.Context, question string) (*api.AskResponse, error) {
	var out api.AskResponse
	body := api.AskRequest{Question: question}
	if err := c.do(ctx, http.MethodPost, "/api/ask", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Retrieve returns the sources for a question without recording it.
func (c *Client) Retrieve(ctx context.Context, question string) (*api.RetrieveResponse, error) {
	var out api.RetrieveResponse
	q := url.Values{}
	q.Set("question", question)
	if err := c.do(ctx, http.MethodGet, "/api/retrieve", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns up to limit recent exchanges. A non-positive limit uses
// the server default.
func (c *Client) History(ctx context.Context, limit int) (*api.HistoryResponse, error) {
	var out api.HistoryResponse
	var q url.Values
	if limit > 0 {
		q = url.Values{}
		q.Set("limit", strconv.Itoa(limit))
	}
	if err := c.do(ctx, http.MethodGet, "/api/history", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClearHistory(ctx context.Context) (*api.MessageResponse, error) {
	var out api.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/clear-history", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.target
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to legalqa API at %s: %w", c.target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(body))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
