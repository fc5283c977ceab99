package validation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/request"
)

// MaxTickerLength is the longest accepted ticker symbol.
const MaxTickerLength = 20

// ValidateLogin validates a login request.
func ValidateLogin(req request.LoginRequest) error {
	if err := ValidateUsername(strings.TrimSpace(req.Username)); err != nil {
		return &Error{Fields: map[string]string{"username": err.Error()}}
	}
	return nil
}

// ValidateCreatePosition validates a position creation request.
//
// Required fields:
//   - ticker: non-blank, at most MaxTickerLength characters, no whitespace
//   - quantity: must be positive
//   - purchase_price or purchase_date: at least one of them
//
// Optional fields (validated if provided):
//   - purchase_price: must be zero or positive
//   - purchase_date: YYYY-MM-DD or RFC3339, not in the future
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreatePosition(req request.CreatePositionRequest, now time.Time) error {
	errors := make(map[string]string)

	ticker := strings.TrimSpace(req.Ticker)
	switch {
	case ticker == "":
		errors["ticker"] = "ticker is required"
	case len(ticker) > MaxTickerLength:
		errors["ticker"] = fmt.Sprintf("ticker must be %d characters or less", MaxTickerLength)
	case strings.ContainsAny(ticker, " \t\n/?#"):
		errors["ticker"] = fmt.Sprintf("invalid ticker: %s", ticker)
	}

	if math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0) || req.Quantity <= 0 {
		errors["quantity"] = "quantity must be positive"
	}

	if req.PurchasePrice != nil {
		p := *req.PurchasePrice
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			errors["purchase_price"] = "purchase_price must be zero or positive"
		}
	}

	if req.PurchaseDate != nil {
		d, err := ParseTime(strings.TrimSpace(*req.PurchaseDate))
		if err != nil {
			errors["purchase_date"] = fmt.Sprintf("purchase_date cannot be parsed: %v", err)
		} else if d.After(now) {
			errors["purchase_date"] = "purchase_date cannot be in the future"
		}
	}

	if req.PurchasePrice == nil && req.PurchaseDate == nil {
		errors["purchase_price"] = "purchase_price or purchase_date is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
