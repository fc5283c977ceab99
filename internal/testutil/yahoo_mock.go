package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined test data instead of making actual API calls.
// Responses and errors can be configured per symbol; symbols without their
// own entry fall back to MockResponse and MockError.
type MockYahooClient struct {
	// MockResponse is the response to return from query methods
	MockResponse yahoo.Response
	// MockError is the error to return from query methods
	MockError error
	// Responses holds per-symbol responses
	Responses map[string]yahoo.Response
	// Errors holds per-symbol errors
	Errors map[string]error
	// Search is the response of SearchSymbols
	Search yahoo.SearchResponse
	// SearchError is the error of SearchSymbols
	SearchError error

	mu sync.Mutex
	// QueryCount tracks how many times a query method was called
	QueryCount int
	// Queries records the symbols passed to query methods, in call order
	Queries []string
}

// NewMockYahooClient creates a new mock Yahoo client with default test data.
// The default data includes 5 days of historical prices suitable for testing.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		MockResponse: CreateMockYahooResponse(5),
		Responses:    make(map[string]yahoo.Response),
		Errors:       make(map[string]error),
	}
}

// QueryYahooFiveDaySymbol mocks the 5-day symbol query with predefined test data.
func (m *MockYahooClient) QueryYahooFiveDaySymbol(_ context.Context, symbol string) (yahoo.Response, error) {
	return m.query(symbol)
}

// QueryYahooSymbolByDateRange mocks the date range query with predefined test data.
// The range is ignored; the configured response is returned as-is.
func (m *MockYahooClient) QueryYahooSymbolByDateRange(_ context.Context, symbol string, _, _ time.Time) (yahoo.Response, error) {
	return m.query(symbol)
}

// ParseChart delegates to the real ParseChart method since it's pure logic with no side effects.
func (m *MockYahooClient) ParseChart(yahooResult yahoo.Response) (yahoo.PriceChart, error) {
	client := yahoo.NewFinanceClient()
	return client.ParseChart(yahooResult)
}

// SearchSymbols returns the configured search response.
func (m *MockYahooClient) SearchSymbols(_ context.Context, _ string) (yahoo.SearchResponse, error) {
	if m.SearchError != nil {
		return yahoo.SearchResponse{}, m.SearchError
	}
	return m.Search, nil
}

// Calls returns the number of chart queries made so far.
func (m *MockYahooClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCount
}

func (m *MockYahooClient) query(symbol string) (yahoo.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCount++
	m.Queries = append(m.Queries, symbol)

	if err, ok := m.Errors[symbol]; ok {
		return yahoo.Response{}, err
	}
	if resp, ok := m.Responses[symbol]; ok {
		return resp, nil
	}
	if m.MockError != nil {
		return yahoo.Response{}, m.MockError
	}
	return m.MockResponse, nil
}

// WithError configures the mock to return the specified error.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.MockError = err
	return m
}

// WithResponse configures the mock to return the specified response.
func (m *MockYahooClient) WithResponse(resp yahoo.Response) *MockYahooClient {
	m.MockResponse = resp
	return m
}

// WithSymbol configures the response for a single symbol.
func (m *MockYahooClient) WithSymbol(symbol string, resp yahoo.Response) *MockYahooClient {
	m.Responses[symbol] = resp
	return m
}

// WithSymbolError configures the error for a single symbol.
func (m *MockYahooClient) WithSymbolError(symbol string, err error) *MockYahooClient {
	m.Errors[symbol] = err
	return m
}

// WithSearch configures the symbol search response.
func (m *MockYahooClient) WithSearch(quotes ...yahoo.SearchQuote) *MockYahooClient {
	m.Search = yahoo.SearchResponse{Quotes: quotes}
	return m
}

// CreateMockYahooResponse creates a mock Yahoo Finance API response with test data.
// The response includes `days` number of days of price data, ending yesterday.
// Closes run 100.25, 100.75, 101.25 and so on.
func CreateMockYahooResponse(days int) yahoo.Response {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	closes := make(map[time.Time]float64, days)
	for i := 0; i < days; i++ {
		date := yesterday.AddDate(0, 0, -days+i+1)
		closes[date] = 100.0 + float64(i)*0.5 + 0.25
	}
	return CreateMockYahooResponseForCloses("TEST", closes)
}

// CreateMockYahooResponseForDate creates a mock Yahoo response with a single day's data.
// Useful for testing specific date scenarios.
func CreateMockYahooResponseForDate(date time.Time, price float64) yahoo.Response {
	return CreateMockYahooResponseForCloses("TEST", map[time.Time]float64{date: price})
}

// CreateMockYahooResponseForCloses creates a mock Yahoo response holding the
// given daily closes for symbol.
func CreateMockYahooResponseForCloses(symbol string, closes map[time.Time]float64) yahoo.Response {
	dates := make([]time.Time, 0, len(closes))
	for d := range closes {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	timestamps := make([]int64, len(dates))
	opens := make([]*float64, len(dates))
	highs := make([]*float64, len(dates))
	lows := make([]*float64, len(dates))
	closePrices := make([]*float64, len(dates))
	volumes := make([]*int64, len(dates))

	for i, d := range dates {
		c := closes[d]
		open, high, low := c-0.25, c+0.75, c-0.75
		volume := int64(1000000 + i*10000)

		timestamps[i] = d.Unix()
		opens[i] = &open
		highs[i] = &high
		lows[i] = &low
		closePrices[i] = &c
		volumes[i] = &volume
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:           symbol,
						Currency:         "USD",
						ExchangeName:     "NMS",
						FullExchangeName: "NASDAQ",
						LongName:         symbol + " Inc.",
						Shortname:        symbol,
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   opens,
								High:   highs,
								Low:    lows,
								Close:  closePrices,
								Volume: volumes,
							},
						},
					},
				},
			},
		},
	}
}

// CreateMockYahooErrorResponse creates a mock Yahoo response with an error.
// Useful for testing error handling scenarios.
func CreateMockYahooErrorResponse(errorMsg string) yahoo.Response {
	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{},
			Error:  &yahoo.ChartError{Code: "Not Found", Description: errorMsg},
		},
	}
}
