// Package alphavantage is a minimal Alpha Vantage client for current quotes and
// daily closes.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
)

// DefaultBaseURL is the Alpha Vantage query endpoint.
const DefaultBaseURL = "https://www.alphavantage.co/query"

// Client queries Alpha Vantage with a single API key.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the public endpoint.
func New(apiKey string) *Client {
	return NewWithBaseURL(apiKey, DefaultBaseURL)
}

// NewWithBaseURL returns a client against another endpoint, used by tests.
func NewWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// DailyClose is the closing price of one trading day.
type DailyClose struct {
	Date  time.Time
	Close float64
}

// GlobalQuote returns the latest traded price of symbol.
func (c *Client) GlobalQuote(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
	}

	var data struct {
		GlobalQuote map[string]string `json:"Global Quote"`
	}
	if err := c.query(ctx, params, &data); err != nil {
		return 0, err
	}

	s, ok := data.GlobalQuote["05. price"]
	if !ok {
		return 0, fmt.Errorf("%w: no quote for %s", apperrors.ErrSymbolNotFound, symbol)
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q for %s", apperrors.ErrMalformedResponse, s, symbol)
	}
	return price, nil
}

// DailyCloses returns the daily closes of symbol in ascending date order.
// full requests the complete history instead of the last 100 days.
func (c *Client) DailyCloses(ctx context.Context, symbol string, full bool) ([]DailyClose, error) {
	outputSize := "compact"
	if full {
		outputSize = "full"
	}
	params := url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"symbol":     {symbol},
		"outputsize": {outputSize},
	}

	var data struct {
		Series map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := c.query(ctx, params, &data); err != nil {
		return nil, err
	}
	if len(data.Series) == 0 {
		return nil, fmt.Errorf("%w: no historical series for %s", apperrors.ErrSymbolNotFound, symbol)
	}

	closes := make([]DailyClose, 0, len(data.Series))
	for ds, day := range data.Series {
		d, err := time.Parse("2006-01-02", ds)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(day["4. close"], 64)
		if err != nil {
			continue
		}
		closes = append(closes, DailyClose{Date: d, Close: v})
	}
	sort.Slice(closes, func(i, j int) bool { return closes[i].Date.Before(closes[j].Date) })
	return closes, nil
}

// query runs an Alpha Vantage function and decodes the body into out.
// Alpha Vantage reports throttling and bad symbols with HTTP 200 and a
// "Note"/"Information" or "Error Message" field; these are mapped to
// apperrors.ErrRateLimited and apperrors.ErrSymbolNotFound.
func (c *Client) query(ctx context.Context, params url.Values, out any) error {
	if c.apiKey == "" {
		return apperrors.ErrProviderNotConfigured
	}
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: alpha vantage returned %s", apperrors.ErrUpstreamUnavailable, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	var envelope struct {
		Note         string `json:"Note"`
		Information  string `json:"Information"`
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
	}
	switch {
	case envelope.ErrorMessage != "":
		return fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, envelope.ErrorMessage)
	case envelope.Note != "":
		return fmt.Errorf("%w: %s", apperrors.ErrRateLimited, envelope.Note)
	case strings.Contains(envelope.Information, "rate limit"):
		return fmt.Errorf("%w: %s", apperrors.ErrRateLimited, envelope.Information)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
	}
	return nil
}
