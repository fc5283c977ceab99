package model

import "time"

// Diagnostics set on a PositionPnL that could not be valued.
const (
	ErrorPriceUnavailable           = "price unavailable"
	ErrorHistoricalPriceUnavailable = "historical price unavailable"
)

// PositionPnL is the valuation of a single position.
// A nil numeric field means the value is unavailable: if CurrentPrice is nil,
// CurrentValue, PnL and PnLPercent are nil too and Error is set.
type PositionPnL struct {
	Ticker        string     `json:"ticker"`
	Quantity      float64    `json:"quantity"`
	PurchasePrice *float64   `json:"purchase_price"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	CurrentPrice  *float64   `json:"current_price"`
	CurrentValue  *float64   `json:"current_value"`
	PnL           *float64   `json:"pnl"`
	PnLPercent    *float64   `json:"pnl_percent"`
	Error         string     `json:"error,omitempty"`
}

// Priced reports whether the position contributes to portfolio totals.
func (p PositionPnL) Priced() bool {
	return p.Error == "" && p.CurrentValue != nil && p.PnL != nil
}

// CostBasis returns quantity * purchase price, or false when the purchase price is unknown.
func (p PositionPnL) CostBasis() (float64, bool) {
	if p.PurchasePrice == nil {
		return 0, false
	}
	return p.Quantity * *p.PurchasePrice, true
}

// PortfolioValuation is a snapshot of a portfolio at ComputedAt.
// PositionsPnL keeps the order of the input positions. Totals are computed
// over priced positions only; positions with errors are excluded, not zeroed.
type PortfolioValuation struct {
	PositionsPnL    []PositionPnL `json:"positions_pnl"`
	TotalValue      float64       `json:"total_value"`
	TotalPnL        float64       `json:"total_pnl"`
	TotalPnLPercent *float64      `json:"total_pnl_percent"`
	TotalCost       float64       `json:"total_cost"`
	PricedPositions int           `json:"priced_positions"`
	ComputedAt      time.Time     `json:"computed_at"`
}
