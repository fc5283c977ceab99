package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/pricing"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/testutil"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/yahoo"
)

type failingSearcher struct{}

func (failingSearcher) Search(context.Context, string) ([]model.SymbolMatch, error) {
	return nil, errors.New("search backend down")
}

func TestSearchHandler_Stocks(t *testing.T) {
	t.Run("returns matches from the provider", func(t *testing.T) {
		// Setup
		client := testutil.NewMockYahooClient().WithSearch(
			yahoo.SearchQuote{Symbol: "AAPL", LongName: "Apple Inc.", ExchDisp: "NASDAQ"},
		)
		handler := NewSearchHandler(pricing.NewSymbolSearcher(client))
		req := testutil.NewSearchRequest("apple")
		w := httptest.NewRecorder()

		// Execute
		handler.Stocks(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []SymbolResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		want := SymbolResponse{Ticker: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ"}
		if len(response) != 1 || response[0] != want {
			t.Errorf("Expected %+v, got %+v", want, response)
		}
	})

	t.Run("returns an empty array for a blank query", func(t *testing.T) {
		client := testutil.NewMockYahooClient()
		client.SearchError = errors.New("should not be called")
		handler := NewSearchHandler(pricing.NewSymbolSearcher(client))
		req := testutil.NewSearchRequest("  ")
		w := httptest.NewRecorder()

		handler.Stocks(w, req)

		if body := w.Body.String(); body != "[]\n" {
			t.Errorf("Expected empty array, got %s", body)
		}
	})

	t.Run("returns 400 for an overlong query", func(t *testing.T) {
		handler := NewSearchHandler(failingSearcher{})
		req := testutil.NewSearchRequest(strings.Repeat("a", 65))
		w := httptest.NewRecorder()

		handler.Stocks(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("returns 502 when the provider fails", func(t *testing.T) {
		handler := NewSearchHandler(failingSearcher{})
		req := testutil.NewSearchRequest("apple")
		w := httptest.NewRecorder()

		handler.Stocks(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected 502, got %d", w.Code)
		}
	})
}
