package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/BaymaX2803/tweet-sentiment-analysis/apimodels"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/analyzer"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/metrics"
)

// analyzeBody uses pointers so an absent field can be told apart from an
// empty one.
type analyzeBody struct {
	Text  *string `json:"text"`
	Model *string `json:"model"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apimodels.HealthResponse{Status: "ok"})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Serving model catalog", "models", s.models)
	writeJSON(w, http.StatusOK, apimodels.ModelsResponse{
		Models: append([]string(nil), s.models...),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := decodeAnalysisRequest(r.Body)
	if err != nil {
		slog.InfoContext(ctx, "Rejected analysis request", "error", err)
		writeError(w, err)
		return
	}

	slog.DebugContext(ctx, "Received analysis request", "model", req.Model)

	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, req)
	s.observeAnalysis(req.Model, err, time.Since(start))
	if err != nil {
		slog.ErrorContext(ctx, "Analysis request failed", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// decodeAnalysisRequest requires a JSON object carrying string text and
// model fields. Failures are reported as analyzer validation errors.
func decodeAnalysisRequest(body io.Reader) (apimodels.AnalysisRequest, error) {
	var b analyzeBody
	if err := json.NewDecoder(body).Decode(&b); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apimodels.AnalysisRequest{}, analyzer.FieldErrors(apimodels.ValidationIssue{
				Loc:  []string{"body", typeErr.Field},
				Msg:  "Input should be a valid string",
				Type: "string_type",
			})
		}
		return apimodels.AnalysisRequest{}, analyzer.FieldErrors(apimodels.ValidationIssue{
			Loc:  []string{"body"},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		})
	}

	var issues []apimodels.ValidationIssue
	if b.Text == nil {
		issues = append(issues, analyzer.MissingField("text"))
	}
	if b.Model == nil {
		issues = append(issues, analyzer.MissingField("model"))
	}
	if len(issues) > 0 {
		return apimodels.AnalysisRequest{}, analyzer.FieldErrors(issues...)
	}

	return apimodels.AnalysisRequest{Text: *b.Text, Model: *b.Model}, nil
}

func (s *Server) observeAnalysis(model string, err error, d time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeOK
	var aerr *analyzer.Error
	if errors.As(err, &aerr) {
		outcome = aerr.Kind.String()
	} else if err != nil {
		outcome = "error"
	}
	s.metrics.ObserveAnalysis(model, outcome, d)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
