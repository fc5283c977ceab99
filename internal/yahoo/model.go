package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata (name, currency, exchange, last price)
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Price data arrays; entries are null on days without trading
//   - Chart.Error: Optional error object from Yahoo API
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level chart envelope.
type Chart struct {
	Result []Result    `json:"result"`
	Error  *ChartError `json:"error"`
}

// ChartError is the error object Yahoo returns alongside an empty result.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is a single symbol's chart.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta holds symbol metadata.
type Meta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	ExchangeName       string  `json:"exchangeName"`
	FullExchangeName   string  `json:"fullExchangeName"`
	LongName           string  `json:"longName"`
	Shortname          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

// IndicatorsContainer wraps the quote arrays.
type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

// Quote holds the OHLCV arrays. Each array is aligned with Result.Timestamp.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// PriceChart represents a parsed price chart. Days for which Yahoo returned no
// close are left out of Indicators.
type PriceChart struct {
	Currency     string       `json:"currency"`
	Symbol       string       `json:"symbol"`
	ExchangeName string       `json:"exchangeName"`
	LongName     string       `json:"longName"`
	Shortname    string       `json:"shortName"`
	Indicators   []Indicators `json:"indicators"`
}

// Indicators represents a single day's price data.
type Indicators struct {
	Date       time.Time
	PriceOpen  float64
	PriceClose float64
	Volume     int64
	PriceHigh  float64
	PriceLow   float64
}

// SearchResponse is the raw response of the Yahoo Finance search API.
type SearchResponse struct {
	Quotes []SearchQuote `json:"quotes"`
}

// SearchQuote is one candidate of a symbol search.
type SearchQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	Exchange  string `json:"exchange"`
	ExchDisp  string `json:"exchDisp"`
	QuoteType string `json:"quoteType"`
}
