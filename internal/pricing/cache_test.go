package pricing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

type countingProvider struct {
	current    atomic.Int32
	historical atomic.Int32
	series     atomic.Int32

	release   chan struct{}
	seriesErr error
	prices    map[string]float64
	// closeOn, when set, is the trading day historical answers are dated.
	closeOn time.Time
}

func (p *countingProvider) CurrentPrice(ctx context.Context, ticker string) (model.ResolvedPrice, error) {
	p.current.Add(1)
	if p.release != nil {
		<-p.release
	}
	if err := ctx.Err(); err != nil {
		return model.ResolvedPrice{}, err
	}
	price, ok := p.prices[ticker]
	if !ok {
		return model.Unavailable(ticker, "unknown"), nil
	}
	return model.Resolved(ticker, price), nil
}

func (p *countingProvider) HistoricalPrice(_ context.Context, ticker string, date time.Time) (model.ResolvedPrice, error) {
	p.historical.Add(1)
	price, ok := p.prices[ticker]
	if !ok {
		return model.Unavailable(ticker, "unknown"), nil
	}
	on := dateOf(date)
	if !p.closeOn.IsZero() {
		on = p.closeOn
	}
	return model.ResolvedOn(ticker, price, on), nil
}

func (p *countingProvider) PriceHistory(_ context.Context, ticker string, from, _ time.Time) ([]model.HistoryPoint, error) {
	p.series.Add(1)
	if p.seriesErr != nil {
		return nil, p.seriesErr
	}
	return []model.HistoryPoint{{Date: from, Value: p.prices[ticker]}}, nil
}

type memoryStore struct {
	mu     sync.Mutex
	closes map[string]float64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{closes: make(map[string]float64)}
}

func storeKey(ticker string, d time.Time) string {
	return ticker + "|" + d.Format(time.DateOnly)
}

func (s *memoryStore) GetClose(ticker string, date time.Time) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.closes[storeKey(ticker, date)]
	return v, ok, nil
}

func (s *memoryStore) ListCloses(ticker string, from, to time.Time) ([]model.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PricePoint
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if v, ok := s.closes[storeKey(ticker, d)]; ok {
			out = append(out, model.PricePoint{Ticker: ticker, Date: d, Close: v})
		}
	}
	return out, nil
}

func (s *memoryStore) SaveCloses(_ context.Context, points []model.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		s.closes[storeKey(p.Ticker, p.Date)] = p.Close
	}
	return nil
}

func TestCachingResolver_CurrentPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh quote served from cache", func(t *testing.T) {
		next := &countingProvider{prices: map[string]float64{"AAPL": 150}}
		c := NewCachingResolver(next, nil, time.Minute, zerolog.Nop())
		now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }

		for range 3 {
			p, err := c.CurrentPrice(ctx, "AAPL")
			if err != nil || p.Price != 150 {
				t.Fatalf("Expected 150, got %+v (%v)", p, err)
			}
		}
		if got := next.current.Load(); got != 1 {
			t.Errorf("Expected 1 upstream call, got %d", got)
		}

		now = now.Add(time.Minute)
		if _, err := c.CurrentPrice(ctx, "AAPL"); err != nil {
			t.Fatalf("CurrentPrice() returned unexpected error: %v", err)
		}
		if got := next.current.Load(); got != 2 {
			t.Errorf("Expected refresh after expiry, got %d calls", got)
		}
	})

	// WHY: a throttled or unknown ticker must be retried on the next
	// request rather than stay unavailable for the whole TTL.
	t.Run("unavailable answers are not cached", func(t *testing.T) {
		next := &countingProvider{prices: map[string]float64{}}
		c := NewCachingResolver(next, nil, time.Minute, zerolog.Nop())

		_, _ = c.CurrentPrice(ctx, "NOPE")
		_, _ = c.CurrentPrice(ctx, "NOPE")
		if got := next.current.Load(); got != 2 {
			t.Errorf("Expected 2 upstream calls, got %d", got)
		}
	})

	t.Run("concurrent lookups share one call", func(t *testing.T) {
		next := &countingProvider{prices: map[string]float64{"AAPL": 150}, release: make(chan struct{})}
		c := NewCachingResolver(next, nil, time.Minute, zerolog.Nop())

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if p, err := c.CurrentPrice(ctx, "AAPL"); err != nil || p.Price != 150 {
					t.Errorf("Expected 150, got %+v (%v)", p, err)
				}
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(next.release)
		wg.Wait()

		if got := next.current.Load(); got != 1 {
			t.Errorf("Expected 1 upstream call, got %d", got)
		}
	})

	// WHY: lookups of one ticker are shared across users. A client that
	// disconnects must not turn every other waiting valuation into a
	// systemic failure.
	t.Run("cancelled caller does not fail other callers", func(t *testing.T) {
		// Setup
		next := &countingProvider{prices: map[string]float64{"AAPL": 150}, release: make(chan struct{})}
		c := NewCachingResolver(next, nil, time.Minute, zerolog.Nop())

		first, cancelFirst := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() {
			_, err := c.CurrentPrice(first, "AAPL")
			firstErr <- err
		}()
		for next.current.Load() == 0 {
			time.Sleep(time.Millisecond)
		}

		type answer struct {
			price model.ResolvedPrice
			err   error
		}
		second := make(chan answer, 1)
		go func() {
			p, err := c.CurrentPrice(ctx, "AAPL")
			second <- answer{p, err}
		}()
		time.Sleep(20 * time.Millisecond)

		// Execute
		cancelFirst()
		if err := <-firstErr; !errors.Is(err, context.Canceled) {
			t.Errorf("Expected the cancelled caller to get context.Canceled, got %v", err)
		}
		close(next.release)
		got := <-second

		// Assert
		if got.err != nil {
			t.Fatalf("Expected the live caller to be answered, got %v", got.err)
		}
		if !got.price.Available || got.price.Price != 150 {
			t.Errorf("Expected 150, got %+v", got.price)
		}
		if calls := next.current.Load(); calls != 1 {
			t.Errorf("Expected 1 upstream call, got %d", calls)
		}
	})

	t.Run("invalidate", func(t *testing.T) {
		next := &countingProvider{prices: map[string]float64{"AAPL": 150}}
		c := NewCachingResolver(next, nil, time.Minute, zerolog.Nop())

		_, _ = c.CurrentPrice(ctx, "AAPL")
		c.Invalidate("AAPL")
		_, _ = c.CurrentPrice(ctx, "AAPL")
		if got := next.current.Load(); got != 2 {
			t.Errorf("Expected 2 upstream calls, got %d", got)
		}
	})
}

func TestCachingResolver_HistoricalPrice(t *testing.T) {
	ctx := context.Background()
	next := &countingProvider{prices: map[string]float64{"AAPL": 120}}
	store := newMemoryStore()
	c := NewCachingResolver(next, store, time.Minute, zerolog.Nop())
	date := time.Date(2023, 6, 1, 15, 0, 0, 0, time.UTC)

	for range 2 {
		p, err := c.HistoricalPrice(ctx, "AAPL", date)
		if err != nil || p.Price != 120 {
			t.Fatalf("Expected 120, got %+v (%v)", p, err)
		}
	}
	if got := next.historical.Load(); got != 1 {
		t.Errorf("Expected the stored close to be reused, got %d calls", got)
	}
	if _, ok, _ := store.GetClose("AAPL", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)); !ok {
		t.Errorf("Expected close to be stored under its date")
	}
}

func TestCachingResolver_HistoricalPriceStorage(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	// WHY: today's price still moves, and stored closes are never refreshed.
	t.Run("today is not stored", func(t *testing.T) {
		// Setup
		next := &countingProvider{prices: map[string]float64{"AAPL": 120}}
		store := newMemoryStore()
		c := NewCachingResolver(next, store, time.Minute, zerolog.Nop())
		c.now = func() time.Time { return today.Add(15 * time.Hour) }

		// Execute
		p, err := c.HistoricalPrice(ctx, "AAPL", today.Add(9*time.Hour))

		// Assert
		if err != nil || p.Price != 120 {
			t.Fatalf("Expected 120, got %+v (%v)", p, err)
		}
		if _, ok, _ := store.GetClose("AAPL", today); ok {
			t.Errorf("Expected today's price not to be stored")
		}
	})

	// WHY: a Sunday lookup answers with Friday's close; storing it under
	// Sunday would record a close for a day without trading.
	t.Run("stored under the trading day", func(t *testing.T) {
		// Setup
		friday := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
		sunday := friday.AddDate(0, 0, 2)
		next := &countingProvider{prices: map[string]float64{"AAPL": 180}, closeOn: friday}
		store := newMemoryStore()
		c := NewCachingResolver(next, store, time.Minute, zerolog.Nop())
		c.now = func() time.Time { return today }

		// Execute
		if _, err := c.HistoricalPrice(ctx, "AAPL", sunday); err != nil {
			t.Fatalf("HistoricalPrice() returned unexpected error: %v", err)
		}

		// Assert
		if v, ok, _ := store.GetClose("AAPL", friday); !ok || v != 180 {
			t.Errorf("Expected 180 stored under friday, got %v (%v)", v, ok)
		}
		if _, ok, _ := store.GetClose("AAPL", sunday); ok {
			t.Errorf("Expected nothing stored under sunday")
		}
	})
}

func TestCachingResolver_PriceHistory(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 5)

	next := &countingProvider{prices: map[string]float64{"AAPL": 150}}
	store := newMemoryStore()
	c := NewCachingResolver(next, store, time.Minute, zerolog.Nop())

	points, err := c.PriceHistory(ctx, "AAPL", from, to)
	if err != nil || len(points) != 1 {
		t.Fatalf("Expected 1 point, got %+v (%v)", points, err)
	}

	// WHY: a provider outage should not blank out a chart whose closes
	// were already fetched once.
	next.seriesErr = apperrors.ErrUpstreamUnavailable
	points, err = c.PriceHistory(ctx, "AAPL", from, to)
	if err != nil {
		t.Fatalf("Expected stored closes, got error %v", err)
	}
	if len(points) != 1 || points[0].Value != 150 {
		t.Errorf("Expected stored close 150, got %+v", points)
	}

	if _, err := c.PriceHistory(ctx, "MSFT", from, to); !errors.Is(err, apperrors.ErrUpstreamUnavailable) {
		t.Errorf("Expected ErrUpstreamUnavailable without stored closes, got %v", err)
	}

	// WHY: a series ending today carries a close that is not final yet.
	t.Run("today's close is not stored", func(t *testing.T) {
		next := &countingProvider{prices: map[string]float64{"IBM": 140}}
		store := newMemoryStore()
		c := NewCachingResolver(next, store, time.Minute, zerolog.Nop())
		c.now = func() time.Time { return from.Add(12 * time.Hour) }

		points, err := c.PriceHistory(ctx, "IBM", from, from)
		if err != nil || len(points) != 1 {
			t.Fatalf("Expected 1 point, got %+v (%v)", points, err)
		}
		if _, ok, _ := store.GetClose("IBM", from); ok {
			t.Errorf("Expected today's close not to be stored")
		}
	})
}
