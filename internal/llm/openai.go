package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/config"
)

// OpenAI talks to any OpenAI-compatible chat completions endpoint. Ollama
// serves one under /v1.
type OpenAI struct {
	client *openai.Client
	cfg    *config.ProviderConfig
}

func NewOpenAI(cfg *config.ProviderConfig) (*OpenAI, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("provider endpoint cannot be empty")
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(compatBaseURL(cfg.Endpoint)),
		option.WithMaxRetries(0),
	)

	return &OpenAI{
		client: client,
		cfg:    cfg,
	}, nil
}

func (o *OpenAI) Generate(ctx context.Context, prompt string, opts ...Option) (*Response, error) {
	options := applyOptions(Options{Temperature: o.cfg.Temperature, MaxTokens: o.cfg.MaxTokens}, opts)
	if options.Model == "" {
		return nil, errors.New("model is required")
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.F(openai.ChatModel(options.Model)),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Temperature: openai.F(options.Temperature),
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.F(options.MaxTokens)
	}
	if options.JSON {
		params.ResponseFormat = openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONObjectParam{
				Type: openai.F(openai.ResponseFormatJSONObjectTypeJSONObject),
			},
		)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("provider returned no choices")
	}

	return &Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// compatBaseURL turns a runtime root such as http://localhost:11434 into the
// OpenAI-compatible base http://localhost:11434/v1/.
func compatBaseURL(endpoint string) string {
	base := strings.TrimRight(endpoint, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base + "/"
}
