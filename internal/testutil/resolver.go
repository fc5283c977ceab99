package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// StubResolver is an in-memory price resolver for testing.
// Tickers without a configured price resolve as unavailable.
type StubResolver struct {
	mu         sync.Mutex
	prices     map[string]float64
	historical map[string]float64
	closes     map[string][]model.HistoryPoint
	errs       map[string]error
	calls      int
}

// NewStubResolver creates a resolver without any prices.
func NewStubResolver() *StubResolver {
	return &StubResolver{
		prices:     make(map[string]float64),
		historical: make(map[string]float64),
		closes:     make(map[string][]model.HistoryPoint),
		errs:       make(map[string]error),
	}
}

// WithPrice sets the current price of ticker.
func (r *StubResolver) WithPrice(ticker string, price float64) *StubResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prices[ticker] = price
	return r
}

// WithHistoricalPrice sets the price of ticker returned for any past date.
func (r *StubResolver) WithHistoricalPrice(ticker string, price float64) *StubResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.historical[ticker] = price
	return r
}

// WithCloses sets the daily closes of ticker returned by PriceHistory.
func (r *StubResolver) WithCloses(ticker string, closes ...model.HistoryPoint) *StubResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes[ticker] = closes
	return r
}

// WithError makes every lookup of ticker fail with err.
func (r *StubResolver) WithError(ticker string, err error) *StubResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[ticker] = err
	return r
}

// Calls returns the number of lookups made so far.
func (r *StubResolver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// CurrentPrice implements valuation.Resolver.
func (r *StubResolver) CurrentPrice(_ context.Context, ticker string) (model.ResolvedPrice, error) {
	return r.lookup(ticker, r.prices)
}

// HistoricalPrice implements valuation.Resolver.
func (r *StubResolver) HistoricalPrice(_ context.Context, ticker string, _ time.Time) (model.ResolvedPrice, error) {
	return r.lookup(ticker, r.historical)
}

// PriceHistory implements valuation.SeriesResolver. Closes outside the range
// are left out.
func (r *StubResolver) PriceHistory(_ context.Context, ticker string, from, to time.Time) ([]model.HistoryPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	if err, ok := r.errs[ticker]; ok {
		return nil, err
	}
	out := []model.HistoryPoint{}
	for _, p := range r.closes[ticker] {
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *StubResolver) lookup(ticker string, prices map[string]float64) (model.ResolvedPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	if err, ok := r.errs[ticker]; ok {
		return model.ResolvedPrice{}, err
	}
	price, ok := prices[ticker]
	if !ok {
		return model.Unavailable(ticker, "no price configured"), nil
	}
	return model.Resolved(ticker, price), nil
}
