package apimodels

import "encoding/json"

// Sentiment labels the provider is asked to choose from.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// AnalysisResult is relayed from the provider. Both values are kept exactly as
// the provider produced them; the gateway only guarantees they are present.
type AnalysisResult struct {
	// The sentiment classification, nominally one of the Label constants
	Label json.RawMessage `json:"label"`

	// Object with positive/negative/neutral scores, nominally summing to 1.0
	ConfidenceScores json.RawMessage `json:"confidence_scores"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ModelsResponse struct {
	Models []string `json:"models"`
}

// ValidationIssue describes one problem with a request body.
type ValidationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ErrorResponse carries either a message or a list of ValidationIssue in
// Detail.
type ErrorResponse struct {
	Detail any `json:"detail"`
}
