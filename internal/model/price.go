package model

import "time"

// ResolvedPrice is the answer of a price resolver for a single ticker.
// Available is false when the provider could not price the ticker; Reason then
// carries a short diagnostic. Date is the trading day of a historical close
// and zero for current quotes.
type ResolvedPrice struct {
	Ticker    string
	Price     float64
	Date      time.Time
	Available bool
	Reason    string
}

// Resolved returns an available price.
func Resolved(ticker string, price float64) ResolvedPrice {
	return ResolvedPrice{Ticker: ticker, Price: price, Available: true}
}

// ResolvedOn returns an available close of the trading day date.
func ResolvedOn(ticker string, price float64, date time.Time) ResolvedPrice {
	return ResolvedPrice{Ticker: ticker, Price: price, Date: date, Available: true}
}

// Unavailable returns a price marker for a ticker that could not be priced.
func Unavailable(ticker, reason string) ResolvedPrice {
	return ResolvedPrice{Ticker: ticker, Reason: reason}
}

// PricePoint is a daily closing price, stored in the historical quote cache.
type PricePoint struct {
	Ticker string
	Date   time.Time
	Close  float64
}
