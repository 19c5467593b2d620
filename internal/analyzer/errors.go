package analyzer

import (
	"fmt"

	"github.com/BaymaX2803/tweet-sentiment-analysis/apimodels"
)

// Kind discriminates the ways an analysis can fail.
type Kind int

const (
	// KindValidation means the caller's input was rejected before the provider was called.
	KindValidation Kind = iota + 1
	// KindMalformedResponse means the provider output was not valid JSON.
	KindMalformedResponse
	// KindSchemaViolation means the provider JSON lacked a required key.
	KindSchemaViolation
	// KindProvider covers every failure reaching or running the provider.
	KindProvider
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindMalformedResponse:
		return "malformed_response"
	case KindSchemaViolation:
		return "schema_violation"
	case KindProvider:
		return "provider"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Caller-facing detail messages.
const (
	DetailEmptyText      = "Text cannot be empty"
	DetailMissingModel   = "Model name must be provided"
	DetailInvalidJSON    = "The model did not return valid JSON."
	DetailUnexpectedForm = "LLM response was not in the expected format."
)

// Error is returned by every failing Analyze call. Detail is safe to show to
// callers; Issues is set for field-level validation failures; Err holds the
// underlying cause, if any.
type Error struct {
	Kind   Kind
	Detail string
	Issues []apimodels.ValidationIssue
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(detail string) *Error {
	return &Error{Kind: KindValidation, Detail: detail}
}

// FieldErrors builds a validation error listing request-level issues.
func FieldErrors(issues ...apimodels.ValidationIssue) *Error {
	return &Error{Kind: KindValidation, Detail: "Invalid request body", Issues: issues}
}

// MissingField is the issue reported for an absent required body field.
func MissingField(name string) apimodels.ValidationIssue {
	return apimodels.ValidationIssue{
		Loc:  []string{"body", name},
		Msg:  "Field required",
		Type: "missing",
	}
}
