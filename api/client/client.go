// Package client talks to a running "mousetron serve" over HTTP.
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
	"time"

	"github.com/aircode610/MouseTron/api"
	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/storage"
)

// Client is a MouseTron API client.
type Client struct {
	target *url.URL
	http   *http.Client
}

// New creates a client for the API at target (scheme + host + port).
func New(target string) (*Client, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API target URL: %q", target)
	}
	return &Client{
		target: u,
		http:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Record posts one execution.
func (c *Client) Record(ctx context.Context, steps []string) (*api.RecordResponse, error) {
	body, err := json.Marshal(api.RecordRequest{Steps: steps})
	if err != nil {
		return nil, err
	}

	var out api.RecordResponse
	if err := c.do(ctx, http.MethodPost, "/api/tools", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recommendations fetches the current recommendations.
func (c *Client) Recommendations(ctx context.Context) (*memory.Recommendations, error) {
	var out memory.Recommendations
	if err := c.do(ctx, http.MethodGet, "/api/recommendations", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recent fetches up to limit executions, newest first.
func (c *Client) Recent(ctx context.Context, limit int) ([]*storage.Execution, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var out []*storage.Execution
	if err := c.do(ctx, http.MethodGet, "/api/tools/recent", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats fetches the execution history summary.
func (c *Client) Stats(ctx context.Context) (*storage.Stats, error) {
	var out storage.Stats
	if err := c.do(ctx, http.MethodGet, "/api/tools/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	u := *c.target
	u.Path = path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to MouseTron API at %s: %w", c.target, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return &StatusError{Code: resp.StatusCode, Message: apiErr.Message}
		}
		return &StatusError{Code: resp.StatusCode, Message: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// StatusError is returned for non-200 API responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed (HTTP %d): %s", e.Code, e.Message)
}
