package llm

import (
	"context"
	"fmt"

	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/config"
)

// Provider sends a single prompt to a model runtime and returns its raw text
// output. Implementations make exactly one attempt per call.
type Provider interface {
	Generate(ctx context.Context, prompt string, opts ...Option) (*Response, error)
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	// JSON asks the runtime to constrain its output to a JSON document.
	JSON bool
}

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

func WithJSON() Option {
	return func(o *Options) { o.JSON = true }
}

type Response struct {
	Content string
	Model   string
	Usage   Usage
}

func applyOptions(defaults Options, opts []Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// New returns the provider selected by cfg.Kind.
func New(cfg *config.ProviderConfig) (Provider, error) {
	switch cfg.Kind {
	case config.ProviderOllama:
		return NewOllama(cfg), nil
	case config.ProviderOpenAI, "":
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}
