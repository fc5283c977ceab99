package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/validation"
)

// TestRespondJSON tests the respondJSON helper function.
// This is an internal test (package handlers, not handlers_test) because
// respondJSON is unexported.
func TestRespondJSON(t *testing.T) {
	t.Run("sets content-type and status code correctly", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "success"}

		respondJSON(w, 200, data)

		if w.Code != 200 {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", w.Header().Get("Content-Type"))
		}
	})

	t.Run("handles nil data without error", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondJSON(w, 204, nil)

		if w.Code != 204 {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
	})

	t.Run("handles un-encodable data gracefully", func(t *testing.T) {
		w := httptest.NewRecorder()

		// Channels cannot be JSON encoded
		data := map[string]any{
			"channel": make(chan int),
		}

		// Should not panic, just log the error
		respondJSON(w, 200, data)

		// Status should still be set even if encoding fails
		if w.Code != 200 {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		// Content-Type should still be set
		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type to be set")
		}
	})

	t.Run("encodes valid data successfully", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{
			"name":  "test",
			"value": "data",
		}

		respondJSON(w, 200, data)

		if w.Body.Len() == 0 {
			t.Error("Expected response body to contain JSON data")
		}

		body := w.Body.String()
		if body == "" {
			t.Error("Expected non-empty response body")
		}
	})
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation error is a bad request", &validation.Error{Fields: map[string]string{"ticker": "ticker is required"}}, http.StatusBadRequest},
		{"invalid username is a bad request", fmt.Errorf("%w: too long", apperrors.ErrInvalidUsername), http.StatusBadRequest},
		{"invalid range is a bad request", fmt.Errorf("%w: 2Y", apperrors.ErrInvalidRange), http.StatusBadRequest},
		{"unknown user is not found", fmt.Errorf("%w: bob", apperrors.ErrUserNotFound), http.StatusNotFound},
		{"ticker not held is not found", fmt.Errorf("%w: FOO", apperrors.ErrTickerNotHeld), http.StatusNotFound},
		{"batch failure is a bad gateway", fmt.Errorf("%w: %w", apperrors.ErrFailedToGetValuation, &apperrors.BatchError{Op: "valuation", Ticker: "AAPL", Err: apperrors.ErrUpstreamUnavailable}), http.StatusBadGateway},
		{"anything else is an internal error", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			respondServiceError(w, tt.err, "request failed")

			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}

	// WHY: clients render field messages next to the form inputs, so the
	// details of a validation failure must stay a field map.
	t.Run("validation details are a field map", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondServiceError(w, &validation.Error{Fields: map[string]string{"quantity": "quantity must be greater than 0"}}, "request failed")

		var body struct {
			Details map[string]string `json:"details"`
		}
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&body)

		if body.Details["quantity"] != "quantity must be greater than 0" {
			t.Errorf("Expected quantity detail, got %v", body.Details)
		}
	})
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Username string `json:"username"`
	}

	t.Run("decodes a valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice"}`))

		got, err := parseJSON[payload](req)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got.Username != "alice" {
			t.Errorf("Expected alice, got %q", got.Username)
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"user":"alice"}`))

		if _, err := parseJSON[payload](req); err == nil {
			t.Error("Expected error for unknown field")
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":`))

		if _, err := parseJSON[payload](req); err == nil {
			t.Error("Expected error for malformed body")
		}
	})
}
