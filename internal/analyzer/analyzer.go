package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BaymaX2803/tweet-sentiment-analysis/apimodels"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/llm"
)

type Analyzer struct {
	llmProvider llm.Provider
}

func New(llmProvider llm.Provider) *Analyzer {
	return &Analyzer{
		llmProvider: llmProvider,
	}
}

// Validate checks the request before any provider call. Text is checked
// before model.
func Validate(req apimodels.AnalysisRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return validationError(DetailEmptyText)
	}
	if req.Model == "" {
		return validationError(DetailMissingModel)
	}
	return nil
}

// Analyze classifies req.Text with req.Model. Every returned error is an
// *Error; callers branch on its Kind.
func (a *Analyzer) Analyze(ctx context.Context, req apimodels.AnalysisRequest) (*apimodels.AnalysisResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Analyzing sentiment", "model", req.Model)
	startTime := time.Now()

	resp, err := a.llmProvider.Generate(
		ctx,
		BuildPrompt(req.Text),
		llm.WithModel(req.Model),
		llm.WithJSON(),
	)
	if err != nil {
		slog.ErrorContext(ctx, "An error occurred while analyzing sentiment", "model", req.Model, "error", err)
		return nil, &Error{
			Kind:   KindProvider,
			Detail: "An error occurred: " + err.Error(),
			Err:    err,
		}
	}

	result, err := parseResult(resp.Content)
	if err != nil {
		var aerr *Error
		if errors.As(err, &aerr) && aerr.Kind == KindMalformedResponse {
			slog.ErrorContext(ctx, "Failed to decode JSON from LLM response", "model", req.Model, "response", resp.Content)
		} else {
			slog.ErrorContext(ctx, "LLM response was not in the expected format", "model", req.Model, "error", err)
		}
		return nil, err
	}

	slog.DebugContext(ctx, "Sentiment analysis completed",
		"model", req.Model,
		"duration", time.Since(startTime),
		"tokens", resp.Usage.TotalTokens,
	)
	return result, nil
}
