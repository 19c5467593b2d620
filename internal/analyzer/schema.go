package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/BaymaX2803/tweet-sentiment-analysis/apimodels"
)

// resultSchemaJSON only requires the two top-level keys. Value types are left
// open: label values and score shapes are accepted as the provider sends them.
const resultSchemaJSON = `{
  "type": "object",
  "required": ["label", "confidence_scores"]
}`

var resultSchema = mustSchema(resultSchemaJSON)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("invalid result schema: %v", err))
	}
	return schema
}

// parseResult treats raw as an untrusted payload: it must be JSON, and it
// must be an object holding label and confidence_scores.
func parseResult(raw string) (*apimodels.AnalysisResult, error) {
	data := []byte(raw)
	if !json.Valid(data) {
		return nil, &Error{
			Kind:   KindMalformedResponse,
			Detail: DetailInvalidJSON,
			Err:    fmt.Errorf("raw output: %q", raw),
		}
	}

	res, err := resultSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &Error{Kind: KindSchemaViolation, Detail: DetailUnexpectedForm, Err: err}
	}
	if !res.Valid() {
		msgs := make([]string, len(res.Errors()))
		for i, e := range res.Errors() {
			msgs[i] = e.String()
		}
		return nil, &Error{
			Kind:   KindSchemaViolation,
			Detail: DetailUnexpectedForm,
			Err:    fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; ")),
		}
	}

	var result apimodels.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Detail: DetailInvalidJSON, Err: err}
	}
	return &result, nil
}
