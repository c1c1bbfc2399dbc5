// Package monitor is the HTTP client for the canal monitoring service.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chrissnell/canalwatch/internal/types"
)

// Client fetches snapshots, the overall status and recent histories
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL.  Transport
// timeouts are whatever httpClient enforces.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type latestResponse struct {
	Success bool                     `json:"success"`
	Data    []types.LocationSnapshot `json:"data"`
}

type statusResponse struct {
	Success       bool   `json:"success"`
	OverallStatus string `json:"overallStatus"`
}

type historyResponse struct {
	Success *bool                   `json:"success,omitempty"`
	Data    []types.HistoricalPoint `json:"data"`
}

// Latest fetches the current snapshot for every location
func (c *Client) Latest(ctx context.Context) Result[[]types.LocationSnapshot] {
	var resp latestResponse
	if outcome, err := c.getJSON(ctx, "/api/latest", nil, &resp); err != nil {
		return failed[[]types.LocationSnapshot](outcome, fmt.Errorf("fetch latest: %w", err))
	}

	if !resp.Success {
		return failed[[]types.LocationSnapshot](SoftFailure, fmt.Errorf("fetch latest: %w", ErrNotReady))
	}
	if resp.Data == nil {
		return failed[[]types.LocationSnapshot](SoftFailure, fmt.Errorf("fetch latest: missing data: %w", ErrUnusableResponse))
	}

	return succeeded(resp.Data)
}

// Status fetches the aggregate safety status
func (c *Client) Status(ctx context.Context) Result[types.OverallStatus] {
	var resp statusResponse
	if outcome, err := c.getJSON(ctx, "/api/status", nil, &resp); err != nil {
		return failed[types.OverallStatus](outcome, fmt.Errorf("fetch status: %w", err))
	}

	if !resp.Success {
		return failed[types.OverallStatus](SoftFailure, fmt.Errorf("fetch status: %w", ErrNotReady))
	}
	if resp.OverallStatus == "" {
		return failed[types.OverallStatus](SoftFailure, fmt.Errorf("fetch status: missing overallStatus: %w", ErrUnusableResponse))
	}

	return succeeded(types.OverallStatus(resp.OverallStatus))
}

// History fetches up to limit of the most recent points for one location,
// oldest first as ordered by the service
func (c *Client) History(ctx context.Context, locationKey string, limit int) Result[[]types.HistoricalPoint] {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var resp historyResponse
	path := "/api/history/" + url.PathEscape(locationKey)
	if outcome, err := c.getJSON(ctx, path, params, &resp); err != nil {
		return failed[[]types.HistoricalPoint](outcome, fmt.Errorf("fetch history for %s: %w", locationKey, err))
	}

	if resp.Success != nil && !*resp.Success {
		return failed[[]types.HistoricalPoint](SoftFailure, fmt.Errorf("fetch history for %s: %w", locationKey, ErrNotReady))
	}
	if resp.Data == nil {
		return failed[[]types.HistoricalPoint](SoftFailure, fmt.Errorf("fetch history for %s: missing data: %w", locationKey, ErrUnusableResponse))
	}

	return succeeded(resp.Data)
}

// getJSON performs a GET and decodes the body into target.  Failures to
// obtain a response are hard; responses that arrive but cannot be decoded
// are soft.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, target any) (Outcome, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return HardFailure, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HardFailure, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return HardFailure, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return SoftFailure, fmt.Errorf("service returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return SoftFailure, fmt.Errorf("decode response: %w", err)
	}

	return Success, nil
}

// truncate shortens s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
