// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/validation"
)

// ValidateUsernameMiddleware validates that the username URL parameter is present and well formed.
// Returns 400 Bad Request if the username is missing or invalid.
//
// Example usage in router:
//
//	r.Route("/users/{username}", func(r chi.Router) {
//	    r.Use(middleware.ValidateUsernameMiddleware)
//	    r.Get("/positions", handler.Positions)
//	})
func ValidateUsernameMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		if username == "" {
			response.RespondError(w, http.StatusBadRequest, "username is required", "")
			return
		}

		if err := validation.ValidateUsername(username); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid username", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
