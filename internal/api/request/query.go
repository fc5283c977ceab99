package request

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/history"
)

// MaxSearchQueryLength bounds the symbol search query.
const MaxSearchQueryLength = 64

// ParseChartFilters extracts the time range of a chart request.
// An empty range selects history.DefaultRange.
func ParseChartFilters(rangeParam string) (history.Range, error) {
	return history.ParseRange(strings.TrimSpace(rangeParam))
}

// ParseSearchQuery trims the symbol search query and checks its length.
// A blank query is valid and yields no matches.
func ParseSearchQuery(queryParam string) (string, error) {
	q := strings.TrimSpace(queryParam)
	if len(q) > MaxSearchQueryLength {
		return "", fmt.Errorf("query must be %d characters or less", MaxSearchQueryLength)
	}
	return q, nil
}
