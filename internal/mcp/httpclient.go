package mcp

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

	"github.com/claude/repsession/internal/models"
	"github.com/claude/repsession/internal/summary"
	"github.com/claude/repsession/internal/tracker"
)

// HTTPClient implements Session by calling the companion API of a running
// `repsession serve`. Used when the MCP binary runs locally over stdio but the
// session lives in another process, possibly reached over Tailscale.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies Session.
var _ Session = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("httpclient: marshal: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func setPath(exerciseID models.ID, idx int) string {
	return "/api/v1/exercises/" + url.PathEscape(exerciseID.String()) + "/sets/" + strconv.Itoa(idx)
}

func (c *HTTPClient) GetState(ctx context.Context) (tracker.State, error) {
	var st tracker.State
	err := c.call(ctx, http.MethodGet, "/api/v1/session", nil, &st)
	return st, err
}

func (c *HTTPClient) LogSet(ctx context.Context, exerciseID models.ID, idx int, u SetUpdate) (tracker.State, error) {
	var st tracker.State
	if u.Weight == nil && u.Reps == nil && !u.Done {
		return st, fmt.Errorf("nothing to log: set weight, reps or done")
	}
	if u.Weight != nil || u.Reps != nil {
		edit := struct {
			Weight *string `json:"weight,omitempty"`
			Reps   *string `json:"reps,omitempty"`
		}{u.Weight, u.Reps}
		if err := c.call(ctx, http.MethodPatch, setPath(exerciseID, idx), edit, &st); err != nil {
			return st, err
		}
	}
	if u.Done {
		if err := c.call(ctx, http.MethodPost, setPath(exerciseID, idx)+"/done", nil, &st); err != nil {
			return st, err
		}
	}
	return st, nil
}

func (c *HTTPClient) SkipRest(ctx context.Context) (bool, error) {
	var out struct {
		Skipped bool `json:"skipped"`
	}
	err := c.call(ctx, http.MethodPost, "/api/v1/rest/skip", nil, &out)
	return out.Skipped, err
}

func (c *HTTPClient) Finish(ctx context.Context) (summary.Summary, error) {
	var sum summary.Summary
	err := c.call(ctx, http.MethodPost, "/api/v1/finish", nil, &sum)
	return sum, err
}
