package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/validation"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON")
		}
	}
}

// parseJSON decodes the request body into a T. Unknown fields are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode request body: %w", err)
	}
	return v, nil
}

// usernameParam returns the {username} path parameter.
func usernameParam(r *http.Request) string {
	return chi.URLParam(r, "username")
}

// respondServiceError maps a service error onto a status code and a single
// error body. message is used for failures without a more specific mapping.
func respondServiceError(w http.ResponseWriter, err error, message string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.Is(err, apperrors.ErrInvalidUsername):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidUsername.Error(), err.Error())
	case errors.Is(err, apperrors.ErrInvalidRange):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidRange.Error(), err.Error())
	case errors.Is(err, apperrors.ErrUserNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrUserNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrTickerNotHeld):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTickerNotHeld.Error(), err.Error())
	case apperrors.IsBatchError(err):
		response.RespondError(w, http.StatusBadGateway, message, err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, message, err.Error())
	}
}
