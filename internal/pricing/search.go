package pricing

import (
	"context"
	"strings"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/yahoo"
)

// SymbolSearcher looks up tickers by name or symbol fragment.
type SymbolSearcher struct {
	yahoo *YahooResolver
}

// NewSymbolSearcher creates a searcher backed by the Yahoo search API.
// Search always goes through Yahoo, whichever provider prices the portfolio.
func NewSymbolSearcher(client yahoo.Client) *SymbolSearcher {
	return &SymbolSearcher{yahoo: NewYahooResolver(client)}
}

// Search returns the matches for query. A blank query has no matches.
func (s *SymbolSearcher) Search(ctx context.Context, query string) ([]model.SymbolMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.SymbolMatch{}, nil
	}
	return s.yahoo.Search(ctx, query)
}
