package apperrors

import (
	"errors"
	"fmt"
)

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrUserNotFound indicates that no user with the given username exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrTickerNotHeld indicates a ticker that is not in the user's positions.
	ErrTickerNotHeld = errors.New("ticker not held in portfolio")
	// ErrSymbolNotFound indicates that a symbol lookup returned no results.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidRange indicates an unknown named chart range.
	ErrInvalidRange = errors.New("invalid time range")
	// ErrInvalidUsername indicates that the username path parameter is missing or malformed.
	ErrInvalidUsername = errors.New("invalid username")
)

// Upstream errors describe the state of the market data provider.
var (
	// ErrUpstreamUnavailable indicates the provider could not be reached or answered with a server error.
	ErrUpstreamUnavailable = errors.New("market data provider unavailable")
	// ErrMalformedResponse indicates the provider answered with a body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed market data response")
	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("market data provider rate limit reached")
	// ErrProviderNotConfigured indicates a provider was selected without the credentials it needs.
	ErrProviderNotConfigured = errors.New("market data provider not configured")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrievePositions = errors.New("failed to retrieve positions")
	ErrFailedToAddPosition       = errors.New("failed to add position")
	ErrFailedToGetValuation      = errors.New("failed to compute portfolio valuation")
	ErrFailedToGetHistory        = errors.New("failed to get portfolio history")
	ErrFailedToBuildChart        = errors.New("failed to build portfolio chart")
	ErrFailedToSearchSymbols     = errors.New("failed to search symbols")
	ErrFailedToRecordSnapshot    = errors.New("failed to record portfolio snapshot")
	ErrFailedToGetVersionInfo    = errors.New("failed to get version information")
)

// BatchError is a systemic failure that aborted a whole valuation, as opposed
// to a single unpriced position. Ticker names the lookup that surfaced the
// failure when there is one.
type BatchError struct {
	Op     string
	Ticker string
	Err    error
}

func (e *BatchError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("%s aborted at %s: %v", e.Op, e.Ticker, e.Err)
	}
	return fmt.Sprintf("%s aborted: %v", e.Op, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// IsBatchError reports whether err is or wraps a *BatchError.
func IsBatchError(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}
