package format

import "testing"

func ptr(v float64) *float64 { return &v }

func TestMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     string
	}{
		{"formats dollars with separators", 1600, "USD", "$1,600.00"},
		{"rounds to cents", 1699.999, "USD", "$1,700.00"},
		{"formats negatives", -20, "USD", "-$20.00"},
		{"falls back to dollars for unknown currencies", 5, "XXX_UNKNOWN", "$5.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Money(tt.amount, tt.currency); got != tt.want {
				t.Errorf("Money(%v, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

// WHY: unpriced positions must read as unavailable, never as $0.00.
func TestMoneyPtr(t *testing.T) {
	if got := MoneyPtr(nil, "USD"); got != NotAvailable {
		t.Errorf("Expected %q, got %q", NotAvailable, got)
	}
	if got := MoneyPtr(ptr(80), "USD"); got != "$80.00" {
		t.Errorf("Expected $80.00, got %q", got)
	}
}

func TestSignedMoney(t *testing.T) {
	if got := SignedMoney(80, "USD"); got != "+$80.00" {
		t.Errorf("Expected +$80.00, got %q", got)
	}
	if got := SignedMoney(-20, "USD"); got != "-$20.00" {
		t.Errorf("Expected -$20.00, got %q", got)
	}
	if got := SignedMoney(0, "USD"); got != "$0.00" {
		t.Errorf("Expected $0.00, got %q", got)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"nil is not available", nil, NotAvailable},
		{"gain has a plus sign", ptr(3.7037), "+3.70%"},
		{"loss keeps its minus sign", ptr(-12.5), "-12.50%"},
		{"zero has no sign", ptr(0), "0.00%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.in); got != tt.want {
				t.Errorf("Percent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuantity(t *testing.T) {
	if got := Quantity(10); got != "10" {
		t.Errorf("Expected 10, got %q", got)
	}
	if got := Quantity(0.5); got != "0.5" {
		t.Errorf("Expected 0.5, got %q", got)
	}
}
