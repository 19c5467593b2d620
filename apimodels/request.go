package apimodels

// AnalysisRequest is the body of POST /analyze.
type AnalysisRequest struct {
	// Text is the free text to classify
	Text string `json:"text"`

	// Model identifies the provider model that runs the classification
	Model string `json:"model"`
}
