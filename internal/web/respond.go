// Package web holds the JSON response helpers shared by all handler
// packages, including the mapping from domain errors to HTTP status codes.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/domain"
)

// JSON writes data as a JSON response with the given status.
func JSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// Error writes err as a JSON error response. Domain errors map onto their
// status codes; anything unclassified is a 500 with a generic message so
// driver internals never leak to clients.
func Error(w http.ResponseWriter, log zerolog.Logger, err error) {
	status, kind := classify(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
		message = "internal error"
	}

	JSON(w, log, status, map[string]string{"error": kind, "message": message})
}

func classify(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, "validation_error"
	case domain.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case domain.IsBusinessRule(err):
		return http.StatusUnprocessableEntity, "business_rule_violation"
	default:
		return http.StatusInternalServerError, "execution_error"
	}
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Validationf("invalid request body")
	}
	return nil
}
