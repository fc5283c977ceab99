package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/history"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/valuation"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/viewstate"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/visibility"
)

// closeLookback extends chart close lookups before the first chart date so
// that the first point can carry forward a close from a non-trading day.
const closeLookback = 7

// PortfolioService values portfolios and builds their history charts.
// Every valuation of a user runs through that user's view state, so a
// response that was overtaken by a newer request is never served in place of
// the newer one.
type PortfolioService struct {
	userRepo     *repository.UserRepository
	positionRepo *repository.PositionRepository
	historyRepo  *repository.HistoryRepository
	resolver     valuation.Resolver
	series       valuation.SeriesResolver
	visibility   *visibility.Registry
	states       *viewstate.Registry[model.PortfolioValuation]
	concurrency  int
	log          zerolog.Logger
	now          func() time.Time
}

// NewPortfolioService creates a new PortfolioService. When resolver also
// implements valuation.SeriesResolver, per-asset chart series are rebuilt from
// historical closes.
func NewPortfolioService(
	userRepo *repository.UserRepository,
	positionRepo *repository.PositionRepository,
	historyRepo *repository.HistoryRepository,
	resolver valuation.Resolver,
	vis *visibility.Registry,
	concurrency int,
	log zerolog.Logger,
) *PortfolioService {
	s := &PortfolioService{
		userRepo:     userRepo,
		positionRepo: positionRepo,
		historyRepo:  historyRepo,
		resolver:     resolver,
		visibility:   vis,
		states:       viewstate.NewRegistry(cloneValuation),
		concurrency:  concurrency,
		log:          log.With().Str("service", "portfolio").Logger(),
		now:          time.Now,
	}
	if sr, ok := resolver.(valuation.SeriesResolver); ok {
		s.series = sr
	}
	if s.concurrency <= 0 {
		s.concurrency = valuation.DefaultConcurrency
	}
	return s
}

func cloneValuation(v model.PortfolioValuation) model.PortfolioValuation {
	out := v
	out.PositionsPnL = append([]model.PositionPnL(nil), v.PositionsPnL...)
	return out
}

// GetValuation values the portfolio of username at current prices.
//
// Positions that cannot be priced are marked in the result. A systemic
// resolver failure is returned as an error wrapping *apperrors.BatchError,
// and the last good valuation stays in the view state. When ctx is cancelled
// the request is abandoned and the view state is left as it was.
func (s *PortfolioService) GetValuation(ctx context.Context, username string) (model.PortfolioValuation, error) {
	if _, err := s.userRepo.GetUser(username); err != nil {
		return model.PortfolioValuation{}, err
	}

	positions, err := s.positionRepo.GetPositions(username)
	if err != nil {
		return model.PortfolioValuation{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrievePositions, err)
	}

	m := s.states.For(username)
	ticket := m.Begin()

	v, err := valuation.Compute(ctx, positions, s.resolver,
		valuation.WithConcurrency(s.concurrency),
		valuation.WithClock(s.now),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			_ = m.Abandon(ticket)
			s.log.Debug().Str("username", username).Msg("Valuation abandoned by caller")
			return model.PortfolioValuation{}, err
		}
		if errors.Is(m.Fail(ticket, err), viewstate.ErrStale) {
			if st := m.State(); st.Status == viewstate.Ready {
				return st.Value, nil
			}
		}
		s.log.Error().Err(err).Str("username", username).Msg("Valuation failed")
		return model.PortfolioValuation{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetValuation, err)
	}

	if errors.Is(m.Succeed(ticket, v), viewstate.ErrStale) {
		if st := m.State(); st.Status == viewstate.Ready {
			s.log.Debug().Str("username", username).Msg("Serving newer valuation over stale response")
			return st.Value, nil
		}
	}
	return v, nil
}

// ValuationState returns the view state of the user's valuation.
func (s *PortfolioService) ValuationState(username string) viewstate.State[model.PortfolioValuation] {
	return s.states.For(username).State()
}

// GetHistory returns the recorded total value history of username in
// ascending date order.
func (s *PortfolioService) GetHistory(username string) ([]model.HistoryPoint, error) {
	if _, err := s.userRepo.GetUser(username); err != nil {
		return nil, err
	}

	snapshots, err := s.historyRepo.GetHistory(username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetHistory, err)
	}

	points := make([]model.HistoryPoint, len(snapshots))
	for i, snap := range snapshots {
		points[i] = model.HistoryPoint{Date: snap.Date, Value: snap.Value}
	}
	return points, nil
}

// GetChart builds the chart of username for r: the TOTAL series and one
// series per held ticker, windowed to r and without the series the user has
// hidden.
func (s *PortfolioService) GetChart(ctx context.Context, username string, r history.Range) (model.ChartDataset, error) {
	total, err := s.GetHistory(username)
	if err != nil {
		return model.ChartDataset{}, err
	}

	v, err := s.GetValuation(ctx, username)
	if err != nil {
		return model.ChartDataset{}, err
	}

	now := s.now()
	total = history.FilterRange(total, r, now)
	holdings := history.MergeHoldings(v.PositionsPnL)
	prices := s.closes(ctx, holdings, total)

	ds := history.FilterDataset(history.BuildSeries(total, holdings, prices), r, now)

	c, err := s.controller(username)
	if err != nil {
		return model.ChartDataset{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToBuildChart, err)
	}
	return c.Apply(ds), nil
}

// closes fetches the daily closes of every holding over the chart axis.
// Tickers whose closes cannot be fetched are left out and fall back to an
// approximated series.
func (s *PortfolioService) closes(ctx context.Context, holdings []model.PositionPnL, axis []model.HistoryPoint) map[string][]model.HistoryPoint {
	prices := make(map[string][]model.HistoryPoint, len(holdings))
	if s.series == nil || len(axis) == 0 || len(holdings) == 0 {
		return prices
	}

	sorted := history.SortPoints(axis)
	from := history.DateOf(sorted[0].Date).AddDate(0, 0, -closeLookback)
	to := history.DateOf(sorted[len(sorted)-1].Date)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, h := range holdings {
		g.Go(func() error {
			points, err := s.series.PriceHistory(gctx, h.Ticker, from, to)
			if err != nil {
				s.log.Warn().Err(err).Str("ticker", h.Ticker).Msg("Failed to fetch closes, approximating series")
				return nil
			}
			mu.Lock()
			prices[h.Ticker] = points
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return prices
}

// GetVisibility returns the ticker to visible mapping of username.
func (s *PortfolioService) GetVisibility(username string) (map[string]bool, error) {
	if _, err := s.userRepo.GetUser(username); err != nil {
		return nil, err
	}
	c, err := s.controller(username)
	if err != nil {
		return nil, err
	}
	return c.Snapshot(), nil
}

// ToggleVisibility flips the visibility of ticker for username and returns
// the resulting mapping. The TOTAL series cannot be hidden. Tickers the user
// holds no position in are rejected with apperrors.ErrTickerNotHeld.
func (s *PortfolioService) ToggleVisibility(username, ticker string) (map[string]bool, error) {
	if _, err := s.userRepo.GetUser(username); err != nil {
		return nil, err
	}
	c, err := s.controller(username)
	if err != nil {
		return nil, err
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !c.Tracks(ticker) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTickerNotHeld, ticker)
	}
	c.Toggle(ticker)
	return c.Snapshot(), nil
}

func (s *PortfolioService) controller(username string) (*visibility.Controller, error) {
	return s.visibility.Get(username, func() ([]string, error) {
		return s.positionRepo.GetTickers(username)
	})
}
