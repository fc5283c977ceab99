package request

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
}

// CreatePositionRequest represents the request body for adding a position.
// At least one of PurchasePrice and PurchaseDate must be set; an explicit
// price takes precedence over the date.
type CreatePositionRequest struct {
	Ticker        string   `json:"ticker"`
	Quantity      float64  `json:"quantity"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	PurchaseDate  *string  `json:"purchase_date,omitempty"`
}
