// Package pricing adapts quote providers to the valuation resolver interfaces.
//
// Providers report failures as classified errors (see internal/apperrors).
// Failures that concern a single ticker become unavailable prices so that
// only the affected position is marked; everything else is returned as an
// error and aborts the valuation.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/alphavantage"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/yahoo"
)

// tickerScoped reports whether err only concerns the requested ticker.
func tickerScoped(err error) bool {
	return errors.Is(err, apperrors.ErrSymbolNotFound) || errors.Is(err, apperrors.ErrRateLimited)
}

// classify turns a provider error into a resolver answer.
func classify(ticker string, err error) (model.ResolvedPrice, error) {
	if tickerScoped(err) {
		return model.Unavailable(ticker, err.Error()), nil
	}
	return model.ResolvedPrice{}, err
}

// lookbackDays is how far before a purchase date historical lookups reach to
// find the previous trading day.
const lookbackDays = 7

func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Provider names accepted by NewProvider.
const (
	ProviderYahoo        = "yahoo"
	ProviderAlphaVantage = "alphavantage"
)

// NewProvider returns the quote provider called name.
func NewProvider(name, alphaVantageKey string, yc yahoo.Client) (Provider, error) {
	switch name {
	case "", ProviderYahoo:
		return NewYahooResolver(yc), nil
	case ProviderAlphaVantage:
		if alphaVantageKey == "" {
			return nil, fmt.Errorf("%w: ALPHA_VANTAGE_API_KEY is required for provider %q", apperrors.ErrProviderNotConfigured, name)
		}
		return NewAlphaVantageResolver(alphavantage.New(alphaVantageKey)), nil
	default:
		return nil, fmt.Errorf("%w: unknown price provider %q", apperrors.ErrProviderNotConfigured, name)
	}
}
