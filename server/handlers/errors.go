package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"match-occupancy/analysis"
	"match-occupancy/util/log"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps analysis errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrFormat),
		errors.Is(err, analysis.ErrInvalidMetric),
		errors.Is(err, analysis.ErrInvalidReferenceHour),
		errors.Is(err, analysis.ErrUnknownCountry),
		errors.Is(err, analysis.ErrDuplicateSample):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Errorf("[Handlers] Internal error: %v", err)
		msg = "Internal server error"
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("[Handlers] Error encoding response: %v", err)
	}
}
