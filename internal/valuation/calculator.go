package valuation

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// DefaultConcurrency bounds the number of price lookups in flight for one valuation.
const DefaultConcurrency = 4

type config struct {
	concurrency int
	now         func() time.Time
}

// Option configures Compute.
type Option func(*config)

// WithConcurrency sets the maximum number of concurrent price lookups.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithClock sets the clock used to stamp ComputedAt.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// Compute values every position and aggregates the portfolio totals.
//
// Price lookups for the positions are issued concurrently and all of them
// complete before aggregation runs. A position whose price cannot be resolved
// is returned with its Error set and is left out of the totals. A resolver
// error aborts the computation and is returned as a *apperrors.BatchError; no
// partial valuation is returned in that case.
//
// PositionsPnL is in the same order as positions.
func Compute(ctx context.Context, positions []model.Position, r Resolver, opts ...Option) (model.PortfolioValuation, error) {
	cfg := config{concurrency: DefaultConcurrency, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	results := make([]model.PositionPnL, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, p := range positions {
		g.Go(func() error {
			pnl, err := valuePosition(gctx, p, r)
			if err != nil {
				return err
			}
			results[i] = pnl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.PortfolioValuation{}, err
	}

	valuation := Aggregate(results)
	valuation.ComputedAt = cfg.now().UTC()
	return valuation, nil
}

// valuePosition resolves the purchase price (when only a date is known) and
// the current price of a single position.
func valuePosition(ctx context.Context, p model.Position, r Resolver) (model.PositionPnL, error) {
	out := model.PositionPnL{
		Ticker:       p.Ticker,
		Quantity:     p.Quantity,
		PurchaseDate: p.PurchaseDate,
	}

	var purchasePrice float64
	switch {
	case p.PurchasePrice != nil:
		purchasePrice = *p.PurchasePrice
	case p.PurchaseDate != nil:
		hist, err := r.HistoricalPrice(ctx, p.Ticker, *p.PurchaseDate)
		if err != nil {
			return out, &apperrors.BatchError{Op: "historical price lookup", Ticker: p.Ticker, Err: err}
		}
		if !hist.Available {
			out.Error = model.ErrorHistoricalPriceUnavailable
			return out, nil
		}
		purchasePrice = hist.Price
	default:
		out.Error = model.ErrorHistoricalPriceUnavailable
		return out, nil
	}
	out.PurchasePrice = &purchasePrice

	current, err := r.CurrentPrice(ctx, p.Ticker)
	if err != nil {
		return out, &apperrors.BatchError{Op: "current price lookup", Ticker: p.Ticker, Err: err}
	}
	if !current.Available {
		out.Error = model.ErrorPriceUnavailable
		return out, nil
	}

	cost := p.Quantity * purchasePrice
	value := p.Quantity * current.Price
	pnl := value - cost

	out.CurrentPrice = finite(current.Price)
	out.CurrentValue = finite(value)
	out.PnL = finite(pnl)
	if cost != 0 {
		out.PnLPercent = finite(pnl / cost * 100)
	}
	if out.CurrentPrice == nil || out.CurrentValue == nil || out.PnL == nil {
		out.CurrentPrice, out.CurrentValue, out.PnL, out.PnLPercent = nil, nil, nil, nil
		out.Error = model.ErrorPriceUnavailable
	}
	return out, nil
}

// Aggregate sums the totals of already valued positions. Only priced positions
// are included; TotalPnLPercent is nil when nothing is priced or the included
// cost basis is zero.
func Aggregate(positions []model.PositionPnL) model.PortfolioValuation {
	v := model.PortfolioValuation{PositionsPnL: positions}
	if v.PositionsPnL == nil {
		v.PositionsPnL = []model.PositionPnL{}
	}

	for _, p := range positions {
		if !p.Priced() {
			continue
		}
		cost, _ := p.CostBasis()
		v.TotalValue += *p.CurrentValue
		v.TotalPnL += *p.PnL
		v.TotalCost += cost
		v.PricedPositions++
	}

	if v.PricedPositions > 0 && v.TotalCost != 0 {
		v.TotalPnLPercent = finite(v.TotalPnL / v.TotalCost * 100)
	}
	return v
}

// finite returns a pointer to f, or nil for NaN and infinities.
func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
