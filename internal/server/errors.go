package server

import (
	"errors"
	"net/http"

	"github.com/BaymaX2803/tweet-sentiment-analysis/apimodels"
	"github.com/BaymaX2803/tweet-sentiment-analysis/internal/analyzer"
)

// mapError turns an analysis failure into a status and {"detail": ...} body.
// Field-level validation issues are reported as a list, everything else as a
// message.
func mapError(err error) (int, apimodels.ErrorResponse) {
	var aerr *analyzer.Error
	if !errors.As(err, &aerr) {
		return http.StatusInternalServerError, detail("Internal Server Error")
	}

	switch aerr.Kind {
	case analyzer.KindValidation:
		if len(aerr.Issues) > 0 {
			return http.StatusUnprocessableEntity, apimodels.ErrorResponse{Detail: aerr.Issues}
		}
		return http.StatusUnprocessableEntity, detail(aerr.Detail)
	case analyzer.KindMalformedResponse, analyzer.KindSchemaViolation, analyzer.KindProvider:
		return http.StatusInternalServerError, detail(aerr.Detail)
	default:
		return http.StatusInternalServerError, detail("Internal Server Error")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := mapError(err)
	writeJSON(w, status, body)
}

func detail(msg string) apimodels.ErrorResponse {
	return apimodels.ErrorResponse{Detail: msg}
}
