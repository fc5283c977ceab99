// Package format renders valuation figures for terminal output.
package format

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is known for a figure.
const DefaultCurrency = money.USD

// NotAvailable stands in for values that could not be computed.
const NotAvailable = "N/A"

// Money renders amount in currency with its symbol and thousands separators,
// rounded to the currency's minor unit. Unknown currencies fall back to
// DefaultCurrency.
func Money(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	minor := decimal.NewFromFloat(amount).Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return money.New(minor.IntPart(), cur.Code).Display()
}

// MoneyPtr renders *amount like Money, or NotAvailable for nil.
func MoneyPtr(amount *float64, currency string) string {
	if amount == nil {
		return NotAvailable
	}
	return Money(*amount, currency)
}

// SignedMoney renders amount like Money with an explicit plus sign for gains.
func SignedMoney(amount float64, currency string) string {
	s := Money(amount, currency)
	if decimal.NewFromFloat(amount).Round(2).IsPositive() {
		return "+" + s
	}
	return s
}

// Percent renders p as a signed percentage with two decimals, or
// NotAvailable for nil.
func Percent(p *float64) string {
	if p == nil {
		return NotAvailable
	}
	d := decimal.NewFromFloat(*p).Round(2)
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// Quantity renders a share count without trailing zeros.
func Quantity(q float64) string {
	return decimal.NewFromFloat(q).String()
}
