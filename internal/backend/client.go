// Package backend is the HTTP client for the remote research backend. The
// backend is an opaque collaborator defined only by its wire contract:
// POST /search takes a search request and returns a result; GET /health
// reports service liveness.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kalambet/searchbot/internal/search"
)

// searchTimeout bounds a live search call. Generous because the backend
// runs AI research passes that routinely take tens of seconds.
const searchTimeout = 60 * time.Second

const healthTimeout = 5 * time.Second

// Client communicates with the research backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client targeting the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Search posts the request to the backend's search endpoint. Any transport
// error, timeout, or non-2xx status is returned as an error; the caller
// (the resolver) decides whether to fall back.
func (c *Client) Search(ctx context.Context, req search.Request) (*search.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("posting search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result search.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return &result, nil
}

// Health reports the backend's health document.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// CheckHealth probes GET /health. Used by external tooling and the status
// command, never by the core search path.
func (c *Client) CheckHealth(ctx context.Context) (Health, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("requesting health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Health{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("decoding health: %w", err)
	}
	return h, nil
}
