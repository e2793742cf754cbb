package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/stride/internal/metrics"
	"github.com/claude/stride/internal/models"
)

// HTTPClient implements DataSource by calling the Stride REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

// CurrentMetrics fetches today's snapshot. The athlete is resolved
// server-side from the caller's tailnet identity.
func (c *HTTPClient) CurrentMetrics(ctx context.Context, _ int) (*metrics.Snapshot, error) {
	body, err := c.get(ctx, "/api/v1/metrics/current", nil)
	if err != nil {
		return nil, err
	}

	var snap metrics.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("httpclient: decode current metrics: %w", err)
	}
	return &snap, nil
}

func (c *HTTPClient) MetricsHistory(ctx context.Context, days, _ int) (*metrics.FitnessHistory, error) {
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))

	body, err := c.get(ctx, "/api/v1/metrics/history", params)
	if err != nil {
		return nil, err
	}

	var history metrics.FitnessHistory
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("httpclient: decode fitness history: %w", err)
	}
	return &history, nil
}

func (c *HTTPClient) QueryActivities(ctx context.Context, start, end time.Time, _ int) ([]models.ActivityRow, error) {
	body, err := c.get(ctx, "/api/v1/activities", timeParams(start, end))
	if err != nil {
		return nil, err
	}

	var activities []models.ActivityRow
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("httpclient: decode activities: %w", err)
	}
	return activities, nil
}

func (c *HTTPClient) ListRaceGoals(ctx context.Context, _ int) ([]models.RaceGoalRow, error) {
	body, err := c.get(ctx, "/api/v1/goals", nil)
	if err != nil {
		return nil, err
	}

	var goals []models.RaceGoalRow
	if err := json.Unmarshal(body, &goals); err != nil {
		return nil, fmt.Errorf("httpclient: decode goals: %w", err)
	}
	return goals, nil
}

// QueryPlannedSessions flattens the calendar endpoint's per-day grouping
// back into a chronological session list.
func (c *HTTPClient) QueryPlannedSessions(ctx context.Context, goalID, _ int, start, end time.Time) ([]models.PlannedSessionRow, error) {
	path := fmt.Sprintf("/api/v1/goals/%d/calendar", goalID)
	body, err := c.get(ctx, path, timeParams(start, end))
	if err != nil {
		return nil, err
	}

	var calendar struct {
		Days []struct {
			Date     string                      `json:"date"`
			Sessions []models.PlannedSessionRow `json:"sessions"`
		} `json:"days"`
	}
	if err := json.Unmarshal(body, &calendar); err != nil {
		return nil, fmt.Errorf("httpclient: decode calendar: %w", err)
	}

	var sessions []models.PlannedSessionRow
	for _, day := range calendar.Days {
		sessions = append(sessions, day.Sessions...)
	}
	return sessions, nil
}
