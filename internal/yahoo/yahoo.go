package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
)

// DefaultBaseURL is the Yahoo Finance API host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client defines the interface for fetching financial data from Yahoo Finance.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error)
	QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error)
	ParseChart(yahooResult Response) (PriceChart, error)
	SearchSymbols(ctx context.Context, query string) (SearchResponse, error)
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and provides convenient methods for querying stock prices
// and symbol search.
//
// Errors are classified for the caller:
//   - apperrors.ErrSymbolNotFound: Yahoo does not know the symbol or has no data for it
//   - apperrors.ErrRateLimited: HTTP 429
//   - apperrors.ErrUpstreamUnavailable: transport failures and HTTP 5xx
//   - apperrors.ErrMalformedResponse: the body could not be decoded
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new Yahoo Finance client with default HTTP settings.
func NewFinanceClient() *FinanceClient {
	return NewFinanceClientWithBaseURL(DefaultBaseURL)
}

// NewFinanceClientWithBaseURL creates a client against another host, used by tests.
func NewFinanceClientWithBaseURL(baseURL string) *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
//
// The method performs validation to ensure:
//   - A result is present
//   - Timestamp data is present
//   - Close price data is present and aligned with the timestamps
//
// Days whose close is null are skipped.
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("%w: no results returned", apperrors.ErrSymbolNotFound)
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("%w: no price data returned for %s", apperrors.ErrSymbolNotFound, result.Meta.Symbol)
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("%w: no close prices returned", apperrors.ErrMalformedResponse)
	}

	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("%w: mismatched data lengths", apperrors.ErrMalformedResponse)
	}

	indicators := make([]Indicators, 0, len(result.Timestamp))
	for i, v := range result.Timestamp {
		if quote.Close[i] == nil {
			continue
		}
		indicators = append(indicators, Indicators{
			Date:       time.Unix(v, 0).UTC(),
			PriceClose: *quote.Close[i],
			PriceOpen:  valueAt(quote.Open, i),
			PriceHigh:  valueAt(quote.High, i),
			PriceLow:   valueAt(quote.Low, i),
			Volume:     volumeAt(quote.Volume, i),
		})
	}

	return PriceChart{
		Symbol:       result.Meta.Symbol,
		Currency:     result.Meta.Currency,
		ExchangeName: result.Meta.ExchangeName,
		LongName:     result.Meta.LongName,
		Shortname:    result.Meta.Shortname,
		Indicators:   indicators,
	}, nil
}

func valueAt(values []*float64, i int) float64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

func volumeAt(values []*int64, i int) int64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

// Latest returns the most recent day of the chart.
func (c PriceChart) Latest() (Indicators, bool) {
	if len(c.Indicators) == 0 {
		return Indicators{}, false
	}
	return c.Indicators[len(c.Indicators)-1], true
}

// GetIndicatorOnOrBefore returns the latest trading day on or before target.
// Purchases entered on a weekend or holiday are costed at the previous close.
func (c PriceChart) GetIndicatorOnOrBefore(target time.Time) (Indicators, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	var found Indicators
	ok := false
	for _, ind := range c.Indicators {
		if ind.Date.UTC().Truncate(24 * time.Hour).After(targetDay) {
			break
		}
		found, ok = ind, true
	}
	return found, ok
}

// QueryYahooFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
// This is used to get the latest available closing price.
func (c *FinanceClient) QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, url.PathEscape(symbol))
	var result Response
	if err := c.queryYahoo(ctx, u, &result); err != nil {
		return Response{}, err
	}
	if err := chartError(symbol, result); err != nil {
		return result, err
	}
	return result, nil
}

// QueryYahooSymbolByDateRange fetches daily price data for a symbol within a specific date range.
//
// Parameters:
//   - symbol: Stock ticker symbol (e.g., "AAPL", "MSFT")
//   - startDate: Beginning of date range (inclusive)
//   - endDate: End of date range (inclusive)
func (c *FinanceClient) QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error) {
	u := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		url.PathEscape(symbol),
		startDate.Unix(),
		endDate.Unix(),
	)
	var result Response
	if err := c.queryYahoo(ctx, u, &result); err != nil {
		return Response{}, err
	}
	if err := chartError(symbol, result); err != nil {
		return result, err
	}
	return result, nil
}

// SearchSymbols queries the Yahoo Finance search API for symbols matching query.
func (c *FinanceClient) SearchSymbols(ctx context.Context, query string) (SearchResponse, error) {
	params := url.Values{
		"q":           {query},
		"quotesCount": {"10"},
		"newsCount":   {"0"},
	}
	var result SearchResponse
	if err := c.queryYahoo(ctx, c.baseURL+"/v1/finance/search?"+params.Encode(), &result); err != nil {
		return SearchResponse{}, err
	}
	return result, nil
}

func chartError(symbol string, result Response) error {
	// Chart errors ("Not Found", "Bad Request") always concern the requested symbol.
	if result.Chart.Error != nil {
		return fmt.Errorf("%w: %s: %s", apperrors.ErrSymbolNotFound, symbol, result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return fmt.Errorf("%w: no results returned for symbol %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return nil
}

// queryYahoo executes a GET request against Yahoo Finance and decodes the JSON body into out.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
//
// A 404 still carries a chart error body and is decoded; other non-2xx
// statuses are classified without decoding.
func (c *FinanceClient) queryYahoo(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.ErrRateLimited
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: yahoo returned %s", apperrors.ErrUpstreamUnavailable, resp.Status)
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound:
		return fmt.Errorf("%w: yahoo returned %s", apperrors.ErrMalformedResponse, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
	}
	return nil
}
