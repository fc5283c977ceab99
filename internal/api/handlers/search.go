package handlers

import (
	"net/http"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/search"
)

// SearchHandler handles symbol search requests.
type SearchHandler struct {
	searcher search.Searcher
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searcher search.Searcher) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
	}
}

// SymbolResponse is one search candidate.
type SymbolResponse struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

// Stocks handles GET requests that look up symbols matching a free-text query.
// A blank query yields an empty list.
//
// Endpoint: GET /search/stocks?query=
// Response: 200 OK with array of SymbolResponse
// Error: 400 Bad Request if the query is too long
// Error: 502 Bad Gateway if the search provider fails
func (h *SearchHandler) Stocks(w http.ResponseWriter, r *http.Request) {
	q, err := request.ParseSearchQuery(r.URL.Query().Get("query"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	matches, err := h.searcher.Search(r.Context(), q)
	if err != nil {
		response.RespondError(w, http.StatusBadGateway, apperrors.ErrFailedToSearchSymbols.Error(), err.Error())
		return
	}

	resp := make([]SymbolResponse, len(matches))
	for i, m := range matches {
		resp[i] = SymbolResponse{
			Ticker:   m.Ticker,
			Name:     m.Name,
			Exchange: m.Exchange,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
