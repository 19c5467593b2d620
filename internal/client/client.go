package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BaymaX2803/tweet-sentiment-analysis/apimodels"
)

// Analysis is the client's typed view of a gateway result.
type Analysis struct {
	Label            string             `json:"label"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
}

// HTTPError is a non-2xx answer from the gateway.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Body)
}

// ConnectionError means the gateway could not be reached at all.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Client talks to the sentiment gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client. A zero timeout waits as long as the
// gateway takes.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListModels fetches the gateway's model catalog.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var resp apimodels.ModelsResponse
	if err := c.do(ctx, http.MethodGet, "/models", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// Analyze submits text for classification by model.
func (c *Client) Analyze(ctx context.Context, text, model string) (*Analysis, error) {
	var result Analysis
	req := apimodels.AnalysisRequest{Text: text, Model: model}
	if err := c.do(ctx, http.MethodPost, "/analyze", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks the gateway liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	var resp apimodels.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("gateway reported status %q", resp.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
