// Package response provides utilities for sending consistent HTTP responses.
// It includes helpers for JSON responses, standardized error responses and
// money rounding of response values.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimals monetary values are rounded to.
const MoneyPlaces = 2

// ErrorResponse represents a structured error response returned by the API.
// The Details field is optional and can contain additional context about the error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Sets the Content-Type header to application/json and writes the status code.
// If data is nil, only the status code is sent (useful for 204 No Content).
// Logs encoding errors but does not fail the response.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}

// RespondError sends a structured error response with the given status code.
// The message should be a user-friendly error description.
// The details parameter can be an error string, a field map, or nil.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
//	response.RespondError(w, http.StatusNotFound, "resource not found", nil)
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	RespondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// Money rounds v half away from zero to MoneyPlaces decimals.
func Money(v float64) float64 {
	return decimal.NewFromFloat(v).Round(MoneyPlaces).InexactFloat64()
}

// MoneyPtr rounds *v like Money. A nil value stays nil and serialises as null.
func MoneyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Money(*v)
	return &r
}
