package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/analyzer"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/config"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/llm"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/logging"
)

type fakeProvider struct {
	content string
	err     error
	calls   int
}

func (f *fakeProvider) Generate(_ context.Context, _ string, _ ...llm.Option) (*llm.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content}, nil
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Response, error) {
	var o llm.Options
	for _, opt := range opts {
		opt(&o)
	}
	args := m.Called(ctx, prompt, o)
	if resp := args.Get(0); resp != nil {
		return resp.(*llm.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

const wellFormed = `{"label":"positive","confidence_scores":{"positive":0.92,"negative":0.03,"neutral":0.05}}`

func newTestServer(provider llm.Provider) *Server {
	cfg := config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		Catalog: config.CatalogConfig{Models: []string{"mistral:latest", "llama3.2:latest", "aya:latest"}},
	}
	return New(cfg, analyzer.New(provider))
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestHandleHealth(t *testing.T) {
	w := do(t, newTestServer(&fakeProvider{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHandleModels(t *testing.T) {
	s := newTestServer(&fakeProvider{})

	first := do(t, s, http.MethodGet, "/models", "")
	second := do(t, s, http.MethodGet, "/models", "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, `{"models":["mistral:latest","llama3.2:latest","aya:latest"]}`, first.Body.String())
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestNew_CopiesCatalog(t *testing.T) {
	models := []string{"a", "b"}
	s := New(config.Config{Catalog: config.CatalogConfig{Models: models}}, analyzer.New(&fakeProvider{}))
	models[0] = "mutated"

	w := do(t, s, http.MethodGet, "/models", "")
	assert.JSONEq(t, `{"models":["a","b"]}`, w.Body.String())
}

func TestHandleAnalyze(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		provider := &fakeProvider{content: wellFormed}
		w := do(t, newTestServer(provider), http.MethodPost, "/analyze",
			`{"text":"I love this product!","model":"mistral:latest"}`)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Contains(t, []any{"positive", "negative", "neutral"}, body["label"])

		scores, ok := body["confidence_scores"].(map[string]any)
		require.True(t, ok)
		keys := make([]string, 0, len(scores))
		for k := range scores {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, []string{"positive", "negative", "neutral"}, keys)
		assert.Equal(t, 1, provider.calls)
	})

	t.Run("empty text", func(t *testing.T) {
		for _, text := range []string{"", "   ", "\n\t"} {
			provider := &fakeProvider{content: wellFormed}
			body, _ := json.Marshal(map[string]string{"text": text, "model": "mistral:latest"})
			w := do(t, newTestServer(provider), http.MethodPost, "/analyze", string(body))

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, "Text cannot be empty", decode(t, w)["detail"])
			assert.Zero(t, provider.calls)
		}
	})

	t.Run("empty model", func(t *testing.T) {
		w := do(t, newTestServer(&fakeProvider{content: wellFormed}), http.MethodPost, "/analyze",
			`{"text":"hello","model":""}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Model name must be provided", decode(t, w)["detail"])
	})

	t.Run("missing model field", func(t *testing.T) {
		w := do(t, newTestServer(&fakeProvider{content: wellFormed}), http.MethodPost, "/analyze",
			`{"text":"This should fail because model is missing"}`)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		issues, ok := decode(t, w)["detail"].([]any)
		require.True(t, ok)
		require.Len(t, issues, 1)
		issue := issues[0].(map[string]any)
		assert.Equal(t, []any{"body", "model"}, issue["loc"])
		assert.Equal(t, "Field required", issue["msg"])
	})

	t.Run("missing both fields", func(t *testing.T) {
		w := do(t, newTestServer(&fakeProvider{}), http.MethodPost, "/analyze", `{}`)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		issues := decode(t, w)["detail"].([]any)
		assert.Len(t, issues, 2)
	})

	t.Run("wrong field type", func(t *testing.T) {
		w := do(t, newTestServer(&fakeProvider{}), http.MethodPost, "/analyze", `{"text":42,"model":"m"}`)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		issue := decode(t, w)["detail"].([]any)[0].(map[string]any)
		assert.Equal(t, []any{"body", "text"}, issue["loc"])
		assert.Equal(t, "string_type", issue["type"])
	})

	t.Run("invalid body", func(t *testing.T) {
		w := do(t, newTestServer(&fakeProvider{}), http.MethodPost, "/analyze", `{"text":`)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		issue := decode(t, w)["detail"].([]any)[0].(map[string]any)
		assert.Equal(t, "json_invalid", issue["type"])
	})

	t.Run("provider returns non-json", func(t *testing.T) {
		w := do(t, newTestServer(&fakeProvider{content: "I think it is positive"}), http.MethodPost, "/analyze",
			`{"text":"hello","model":"m"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "The model did not return valid JSON.", decode(t, w)["detail"])
	})

	t.Run("provider omits required key", func(t *testing.T) {
		w := do(t, newTestServer(&fakeProvider{content: `{"label":"neutral"}`}), http.MethodPost, "/analyze",
			`{"text":"hello","model":"m"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "LLM response was not in the expected format.", decode(t, w)["detail"])
	})

	t.Run("provider error", func(t *testing.T) {
		provider := &fakeProvider{err: errors.New(`model "nope" not found`)}
		w := do(t, newTestServer(provider), http.MethodPost, "/analyze", `{"text":"hello","model":"nope"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, `An error occurred: model "nope" not found`, decode(t, w)["detail"])
	})
}

func TestHandleAnalyze_ProviderCall(t *testing.T) {
	provider := new(mockProvider)
	provider.On("Generate",
		mock.Anything,
		mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, `Text to analyze: "Best match ever"`)
		}),
		llm.Options{Model: "aya:latest", JSON: true},
	).Return(&llm.Response{Content: wellFormed}, nil).Once()

	w := do(t, newTestServer(provider), http.MethodPost, "/analyze", `{"text":"Best match ever","model":"aya:latest"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, wellFormed, w.Body.String())
	provider.AssertExpectations(t)
}

func TestHandleAnalyze_RejectedBeforeProvider(t *testing.T) {
	provider := new(mockProvider)

	w := do(t, newTestServer(provider), http.MethodPost, "/analyze", `{"text":"  ","model":"aya:latest"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	provider.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleAnalyze_LogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(config.LogConfig{Level: "info", Format: "json"}, &buf))
	t.Cleanup(func() { slog.SetDefault(prev) })

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"text":"hello","model":"aya:latest"}`))
	req.Header.Set("X-Request-Id", "client-abc")
	w := httptest.NewRecorder()
	newTestServer(&fakeProvider{content: wellFormed}).Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	msgs := map[string]map[string]any{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		msgs[entry["msg"].(string)] = entry
	}
	require.Contains(t, msgs, "Analyzing sentiment")
	assert.Equal(t, "client-abc", msgs["Analyzing sentiment"]["request_id"])
	assert.Equal(t, "aya:latest", msgs["Analyzing sentiment"]["model"])
	require.Contains(t, msgs, "HTTP request completed")
	assert.Equal(t, "client-abc", msgs["HTTP request completed"]["request_id"])
}

func TestMapError(t *testing.T) {
	status, body := mapError(errors.New("unexpected"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal Server Error", body.Detail)

	status, _ = mapError(&analyzer.Error{Kind: analyzer.KindSchemaViolation, Detail: "x"})
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestRouting(t *testing.T) {
	s := newTestServer(&fakeProvider{})

	t.Run("index page", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Sentiment Analysis with Ollama LLMs")
	})

	t.Run("unknown paths get json 404", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			w := do(t, s, method, "/nope", "")
			assert.Equal(t, http.StatusNotFound, w.Code, method)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"), method)
			assert.JSONEq(t, `{"detail":"Not Found"}`, w.Body.String(), method)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		w := do(t, s, http.MethodDelete, "/health", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := config.Config{
		Catalog: config.CatalogConfig{Models: []string{"mistral:latest"}},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	s := New(cfg, analyzer.New(&fakeProvider{content: `{"label":"neutral"}`}))

	do(t, s, http.MethodPost, "/analyze", `{"text":"meh","model":"mistral:latest"}`)
	do(t, s, http.MethodGet, "/health", "")

	w := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `sentiment_analyses_total{model="mistral:latest",outcome="schema_violation"} 1`)
	assert.Contains(t, body, `sentiment_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, body, `sentiment_http_requests_total{method="POST",route="/analyze",status="500"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	w := do(t, newTestServer(&fakeProvider{}), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
