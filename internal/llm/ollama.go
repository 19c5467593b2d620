package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/config"
)

// generateRequest is the body of Ollama's native POST /api/generate.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Format  string          `json:"format,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int64   `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int64  `json:"prompt_eval_count"`
	EvalCount       int64  `json:"eval_count"`
}

// Ollama calls the runtime's native generate endpoint, the same call the
// ollama client libraries make for ollama.generate(format="json").
type Ollama struct {
	baseURL    string
	defaults   Options
	httpClient *http.Client
}

func NewOllama(cfg *config.ProviderConfig) *Ollama {
	return &Ollama{
		baseURL:  strings.TrimRight(cfg.Endpoint, "/"),
		defaults: Options{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens},
		// No client timeout: inference runs as long as the request context allows.
		httpClient: &http.Client{},
	}
}

func (c *Ollama) Generate(ctx context.Context, prompt string, opts ...Option) (*Response, error) {
	options := applyOptions(c.defaults, opts)
	if options.Model == "" {
		return nil, errors.New("model is required")
	}

	reqBody := generateRequest{
		Model:  options.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
		},
	}
	if options.JSON {
		reqBody.Format = "json"
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &Response{
		Content: result.Response,
		Model:   result.Model,
		Usage: Usage{
			PromptTokens:     result.PromptEvalCount,
			CompletionTokens: result.EvalCount,
			TotalTokens:      result.PromptEvalCount + result.EvalCount,
		},
	}, nil
}

// statusError reads Ollama's {"error": "..."} body when present.
func statusError(resp *http.Response) error {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(respBody, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
}
