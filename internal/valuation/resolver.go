// Package valuation computes per-position and aggregate profit and loss for a
// portfolio from its positions and a price resolver.
package valuation

import (
	"context"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// Resolver prices tickers.
//
// An unpriceable ticker is reported with an unavailable model.ResolvedPrice and
// a nil error: that failure stays local to the position. A non-nil error means
// the resolver itself is broken (network outage, malformed upstream response)
// and aborts the whole valuation.
type Resolver interface {
	CurrentPrice(ctx context.Context, ticker string) (model.ResolvedPrice, error)
	HistoricalPrice(ctx context.Context, ticker string, date time.Time) (model.ResolvedPrice, error)
}

// SeriesResolver is implemented by resolvers that can return daily closes for a
// date range. It allows per-asset chart series to be reconstructed from real
// history instead of being approximated with the current price.
// Returned points are closing prices in ascending date order; an empty slice
// means no history is known for the ticker.
type SeriesResolver interface {
	PriceHistory(ctx context.Context, ticker string, from, to time.Time) ([]model.HistoryPoint, error)
}
