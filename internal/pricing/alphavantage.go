package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/alphavantage"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// AlphaVantageClient is the subset of the Alpha Vantage client used for pricing.
type AlphaVantageClient interface {
	GlobalQuote(ctx context.Context, symbol string) (float64, error)
	DailyCloses(ctx context.Context, symbol string, full bool) ([]alphavantage.DailyClose, error)
}

// compactSpan is the calendar span covered by a compact daily series
// (100 trading days).
const compactSpan = 140 * 24 * time.Hour

// AlphaVantageResolver prices tickers with Alpha Vantage quotes.
type AlphaVantageResolver struct {
	client AlphaVantageClient
	now    func() time.Time
}

// NewAlphaVantageResolver creates a resolver backed by client.
func NewAlphaVantageResolver(client AlphaVantageClient) *AlphaVantageResolver {
	return &AlphaVantageResolver{client: client, now: time.Now}
}

// CurrentPrice returns the GLOBAL_QUOTE price of ticker.
func (r *AlphaVantageResolver) CurrentPrice(ctx context.Context, ticker string) (model.ResolvedPrice, error) {
	price, err := r.client.GlobalQuote(ctx, ticker)
	if err != nil {
		return classify(ticker, err)
	}
	return model.Resolved(ticker, price), nil
}

// HistoricalPrice returns the close of ticker on date, or on the last trading
// day before it.
func (r *AlphaVantageResolver) HistoricalPrice(ctx context.Context, ticker string, date time.Time) (model.ResolvedPrice, error) {
	day := dateOf(date)
	closes, err := r.client.DailyCloses(ctx, ticker, r.needsFull(day))
	if err != nil {
		return classify(ticker, err)
	}

	var (
		found   float64
		foundOn time.Time
		ok      bool
	)
	for _, c := range closes {
		if dateOf(c.Date).After(day) {
			break
		}
		found, foundOn, ok = c.Close, dateOf(c.Date), true
	}
	if !ok {
		return model.Unavailable(ticker, fmt.Sprintf("no close on or before %s", day.Format(time.DateOnly))), nil
	}
	return model.ResolvedOn(ticker, found, foundOn), nil
}

// PriceHistory returns the daily closes of ticker between from and to.
// Unknown or throttled tickers yield an empty slice.
func (r *AlphaVantageResolver) PriceHistory(ctx context.Context, ticker string, from, to time.Time) ([]model.HistoryPoint, error) {
	start, end := dateOf(from), dateOf(to)
	closes, err := r.client.DailyCloses(ctx, ticker, r.needsFull(start))
	if err != nil {
		if tickerScoped(err) {
			return []model.HistoryPoint{}, nil
		}
		return nil, err
	}

	points := make([]model.HistoryPoint, 0, len(closes))
	for _, c := range closes {
		d := dateOf(c.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		points = append(points, model.HistoryPoint{Date: d, Value: c.Close})
	}
	return points, nil
}

func (r *AlphaVantageResolver) needsFull(since time.Time) bool {
	return r.now().Sub(since) > compactSpan
}
