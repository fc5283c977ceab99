package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/yahoo"
)

// YahooResolver prices tickers with Yahoo Finance chart data.
type YahooResolver struct {
	client yahoo.Client
}

// NewYahooResolver creates a resolver backed by client.
func NewYahooResolver(client yahoo.Client) *YahooResolver {
	return &YahooResolver{client: client}
}

// CurrentPrice returns the most recent daily close of ticker.
func (r *YahooResolver) CurrentPrice(ctx context.Context, ticker string) (model.ResolvedPrice, error) {
	chart, err := r.chart(func() (yahoo.Response, error) {
		return r.client.QueryYahooFiveDaySymbol(ctx, ticker)
	})
	if err != nil {
		return classify(ticker, err)
	}

	latest, ok := chart.Latest()
	if !ok {
		return model.Unavailable(ticker, "no recent closes"), nil
	}
	return model.Resolved(ticker, latest.PriceClose), nil
}

// HistoricalPrice returns the close of ticker on date, or on the last trading
// day before it.
func (r *YahooResolver) HistoricalPrice(ctx context.Context, ticker string, date time.Time) (model.ResolvedPrice, error) {
	day := dateOf(date)
	chart, err := r.chart(func() (yahoo.Response, error) {
		return r.client.QueryYahooSymbolByDateRange(ctx, ticker, day.AddDate(0, 0, -lookbackDays), day.AddDate(0, 0, 1))
	})
	if err != nil {
		return classify(ticker, err)
	}

	ind, ok := chart.GetIndicatorOnOrBefore(day)
	if !ok {
		return model.Unavailable(ticker, fmt.Sprintf("no close on or before %s", day.Format(time.DateOnly))), nil
	}
	return model.ResolvedOn(ticker, ind.PriceClose, dateOf(ind.Date)), nil
}

// PriceHistory returns the daily closes of ticker between from and to.
// Unknown or throttled tickers yield an empty slice.
func (r *YahooResolver) PriceHistory(ctx context.Context, ticker string, from, to time.Time) ([]model.HistoryPoint, error) {
	chart, err := r.chart(func() (yahoo.Response, error) {
		return r.client.QueryYahooSymbolByDateRange(ctx, ticker, dateOf(from), dateOf(to).AddDate(0, 0, 1))
	})
	if err != nil {
		if tickerScoped(err) {
			return []model.HistoryPoint{}, nil
		}
		return nil, err
	}

	points := make([]model.HistoryPoint, 0, len(chart.Indicators))
	for _, ind := range chart.Indicators {
		points = append(points, model.HistoryPoint{Date: dateOf(ind.Date), Value: ind.PriceClose})
	}
	return points, nil
}

// Search returns the matches of a Yahoo symbol search.
func (r *YahooResolver) Search(ctx context.Context, query string) ([]model.SymbolMatch, error) {
	res, err := r.client.SearchSymbols(ctx, query)
	if err != nil {
		return nil, err
	}

	matches := make([]model.SymbolMatch, 0, len(res.Quotes))
	for _, q := range res.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		exchange := q.ExchDisp
		if exchange == "" {
			exchange = q.Exchange
		}
		matches = append(matches, model.SymbolMatch{
			Ticker:   q.Symbol,
			Name:     name,
			Exchange: exchange,
			Type:     q.QuoteType,
		})
	}
	return matches, nil
}

func (r *YahooResolver) chart(query func() (yahoo.Response, error)) (yahoo.PriceChart, error) {
	resp, err := query()
	if err != nil {
		return yahoo.PriceChart{}, err
	}
	return r.client.ParseChart(resp)
}
