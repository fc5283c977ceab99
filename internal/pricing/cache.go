package pricing

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/valuation"
)

// Provider is a resolver that can also return daily close series.
type Provider interface {
	valuation.Resolver
	valuation.SeriesResolver
}

// PriceStore persists daily closes. Closes never change once the day is
// over, so stored entries are never refreshed.
type PriceStore interface {
	GetClose(ticker string, date time.Time) (float64, bool, error)
	ListCloses(ticker string, from, to time.Time) ([]model.PricePoint, error)
	SaveCloses(ctx context.Context, points []model.PricePoint) error
}

// sharedCallTimeout bounds an upstream call shared by concurrent lookups.
// The call runs detached from any single caller's context, so one caller
// giving up does not fail the others.
const sharedCallTimeout = 30 * time.Second

type cachedQuote struct {
	price     model.ResolvedPrice
	expiresAt time.Time
}

// CachingResolver wraps a Provider with a short-lived in-memory cache for
// current quotes and a persistent store for historical closes. Concurrent
// lookups of the same key share one upstream call.
type CachingResolver struct {
	next  Provider
	store PriceStore
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger

	group singleflight.Group

	mu     sync.Mutex
	quotes map[string]cachedQuote
}

// NewCachingResolver wraps next. store may be nil, in which case historical
// closes are not persisted. A ttl of zero disables the quote cache.
func NewCachingResolver(next Provider, store PriceStore, ttl time.Duration, log zerolog.Logger) *CachingResolver {
	return &CachingResolver{
		next:   next,
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		log:    log.With().Str("component", "price_cache").Logger(),
		quotes: make(map[string]cachedQuote),
	}
}

// CurrentPrice returns the cached quote of ticker while it is fresh, and asks
// the provider otherwise. Unavailable answers are not cached.
func (c *CachingResolver) CurrentPrice(ctx context.Context, ticker string) (model.ResolvedPrice, error) {
	if p, ok := c.cachedQuote(ticker); ok {
		return p, nil
	}

	v, err := c.do(ctx, "current:"+ticker, func(ctx context.Context) (any, error) {
		return c.next.CurrentPrice(ctx, ticker)
	})
	if err != nil {
		return model.ResolvedPrice{}, err
	}

	p := v.(model.ResolvedPrice)
	if p.Available && c.ttl > 0 {
		c.mu.Lock()
		c.quotes[ticker] = cachedQuote{price: p, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}
	return p, nil
}

// HistoricalPrice returns the stored close of ticker on date when known and
// asks the provider otherwise. Answers for days before today are stored under
// the trading day the provider reported.
func (c *CachingResolver) HistoricalPrice(ctx context.Context, ticker string, date time.Time) (model.ResolvedPrice, error) {
	day := dateOf(date)

	if c.store != nil {
		price, ok, err := c.store.GetClose(ticker, day)
		if err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to read price cache")
		} else if ok {
			return model.Resolved(ticker, price), nil
		}
	}

	v, err := c.do(ctx, "historical:"+ticker+":"+day.Format(time.DateOnly), func(ctx context.Context) (any, error) {
		return c.next.HistoricalPrice(ctx, ticker, day)
	})
	if err != nil {
		return model.ResolvedPrice{}, err
	}

	p := v.(model.ResolvedPrice)
	if p.Available && !p.Date.IsZero() && c.final(p.Date) {
		c.save(ctx, []model.PricePoint{{Ticker: ticker, Date: dateOf(p.Date), Close: p.Price}})
	}
	return p, nil
}

// PriceHistory returns the provider's closes for the range and stores those
// of days before today.
// If the provider fails, closes already stored for the range are returned
// instead; the error is returned only when none are stored.
func (c *CachingResolver) PriceHistory(ctx context.Context, ticker string, from, to time.Time) ([]model.HistoryPoint, error) {
	start, end := dateOf(from), dateOf(to)
	key := "series:" + ticker + ":" + start.Format(time.DateOnly) + ":" + end.Format(time.DateOnly)

	v, err := c.do(ctx, key, func(ctx context.Context) (any, error) {
		return c.next.PriceHistory(ctx, ticker, start, end)
	})
	if err != nil {
		stored := c.stored(ticker, start, end)
		if len(stored) == 0 {
			return nil, err
		}
		c.log.Warn().Err(err).Str("ticker", ticker).Int("points", len(stored)).Msg("Serving stored closes after provider failure")
		return stored, nil
	}

	points := v.([]model.HistoryPoint)
	batch := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if c.final(p.Date) {
			batch = append(batch, model.PricePoint{Ticker: ticker, Date: dateOf(p.Date), Close: p.Value})
		}
	}
	if len(batch) > 0 {
		c.save(ctx, batch)
	}
	return points, nil
}

// do runs fn once per key across concurrent callers. Each caller stops
// waiting when its own ctx is done; the shared call keeps running for the
// others until it finishes or sharedCallTimeout passes.
func (c *CachingResolver) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		return fn(callCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// final reports whether the close of date can no longer change.
func (c *CachingResolver) final(date time.Time) bool {
	return dateOf(date).Before(dateOf(c.now()))
}

// Invalidate drops the cached quote of ticker.
func (c *CachingResolver) Invalidate(ticker string) {
	c.mu.Lock()
	delete(c.quotes, ticker)
	c.mu.Unlock()
}

func (c *CachingResolver) cachedQuote(ticker string) (model.ResolvedPrice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.quotes[ticker]
	if !ok {
		return model.ResolvedPrice{}, false
	}
	if !c.now().Before(q.expiresAt) {
		delete(c.quotes, ticker)
		return model.ResolvedPrice{}, false
	}
	return q.price, true
}

func (c *CachingResolver) save(ctx context.Context, points []model.PricePoint) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveCloses(ctx, points); err != nil {
		c.log.Warn().Err(err).Int("points", len(points)).Msg("Failed to write price cache")
	}
}

func (c *CachingResolver) stored(ticker string, from, to time.Time) []model.HistoryPoint {
	if c.store == nil {
		return nil
	}
	closes, err := c.store.ListCloses(ticker, from, to)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to read price cache")
		return nil
	}
	points := make([]model.HistoryPoint, len(closes))
	for i, p := range closes {
		points[i] = model.HistoryPoint{Date: p.Date, Value: p.Close}
	}
	return points
}
