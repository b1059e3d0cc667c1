package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/formcoach/internal/models"
	"github.com/claude/formcoach/internal/storage"
)

// HTTPClient implements DataSource by calling the FormCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// results live on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
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
	req.Header.Set("X-API-Key", c.apiKey)

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

func (c *HTTPClient) QueryExerciseResults(ctx context.Context, start, end time.Time, exerciseID string) ([]models.ExerciseResult, error) {
	params := timeParams(start, end)
	if exerciseID != "" {
		params.Set("exercise", exerciseID)
	}

	body, err := c.get(ctx, "/api/v1/results", params)
	if err != nil {
		return nil, err
	}

	var results []models.ExerciseResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("httpclient: decode results: %w", err)
	}
	return results, nil
}

func (c *HTTPClient) GetExerciseResult(ctx context.Context, id uuid.UUID) (*models.ExerciseResult, error) {
	body, err := c.get(ctx, "/api/v1/results/"+id.String(), nil)
	if err != nil {
		return nil, err
	}

	var result models.ExerciseResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode result: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) StatsByExercise(ctx context.Context) ([]storage.ResultStats, error) {
	body, err := c.get(ctx, "/api/v1/results/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats []storage.ResultStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return stats, nil
}
