package model

import "time"

// Position represents a holding entered by a user.
// A position carries either an explicit purchase price, a purchase date from
// which the price is resolved at valuation time, or both. When both are set
// the explicit price wins.
type Position struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Ticker        string     `json:"ticker"`
	Quantity      float64    `json:"quantity"`
	PurchasePrice *float64   `json:"purchase_price"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HasPurchasePrice reports whether the cost basis is known without a historical lookup.
func (p Position) HasPurchasePrice() bool {
	return p.PurchasePrice != nil
}

// User is the owner of a set of positions.
type User struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SymbolMatch is a candidate returned by the symbol search used to populate
// the ticker autocomplete.
type SymbolMatch struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type,omitempty"`
}
