package history_test

import (
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/history"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func f(v float64) *float64 { return &v }

// TestBuildSeries_Total tests the TOTAL series.
//
// WHY: The total history comes from an external store and may be unsorted;
// the chart axis must still be ascending and the input left untouched.
func TestBuildSeries_Total(t *testing.T) {
	total := []model.HistoryPoint{
		{Date: day("2024-01-03"), Value: 300},
		{Date: day("2024-01-01"), Value: 100},
		{Date: day("2024-01-02"), Value: 200},
	}

	ds := history.BuildSeries(total, nil, nil)

	if len(ds.Series) != 1 {
		t.Fatalf("Expected only the TOTAL series, got %d", len(ds.Series))
	}
	s := ds.Series[0]
	if s.Key != model.TotalSeriesKey || s.Label != history.TotalLabel {
		t.Errorf("Unexpected total series identity: %q / %q", s.Key, s.Label)
	}
	for i, want := range []float64{100, 200, 300} {
		if *s.Points[i].Value != want {
			t.Errorf("Point %d: expected %v, got %v", i, want, *s.Points[i].Value)
		}
	}
	if total[0].Value != 300 {
		t.Error("BuildSeries modified its input")
	}
}

// TestBuildSeries_Approximated tests the constant current-price fallback.
//
// WHY: Without historical closes the per-asset line is an approximation and
// must say so; an asset without a current price must not be drawn at zero.
func TestBuildSeries_Approximated(t *testing.T) {
	total := []model.HistoryPoint{
		{Date: day("2024-01-01"), Value: 100},
		{Date: day("2024-01-02"), Value: 200},
	}
	holdings := []model.PositionPnL{
		{Ticker: "AAPL", Quantity: 2, CurrentPrice: f(150)},
		{Ticker: "TSLA", Quantity: 1, Error: model.ErrorPriceUnavailable},
	}

	ds := history.BuildSeries(total, holdings, nil)

	if len(ds.Series) != 3 {
		t.Fatalf("Expected 3 series, got %d", len(ds.Series))
	}

	aapl := ds.Series[1]
	if !aapl.Approximated {
		t.Error("Expected AAPL series to be flagged approximated")
	}
	if aapl.Label != "AAPL (2 shares) (approx.)" {
		t.Errorf("Unexpected label %q", aapl.Label)
	}
	for _, p := range aapl.Points {
		if p.Value == nil || *p.Value != 300 {
			t.Errorf("Expected constant 300, got %v", p.Value)
		}
	}

	tsla := ds.Series[2]
	for _, p := range tsla.Points {
		if p.Value != nil {
			t.Errorf("Expected gap for unpriced asset, got %v", *p.Value)
		}
	}
	if len(tsla.Points) != len(total) {
		t.Errorf("Expected series aligned to %d dates, got %d", len(total), len(tsla.Points))
	}
}

// TestBuildSeries_Historical tests reconstruction from historical closes.
//
// WHY: When closes are known the asset line must follow them, carrying the
// last close across non-trading days and leaving gaps before the first one.
func TestBuildSeries_Historical(t *testing.T) {
	total := []model.HistoryPoint{
		{Date: day("2024-01-05"), Value: 1},
		{Date: day("2024-01-06"), Value: 1},
		{Date: day("2024-01-07"), Value: 1},
		{Date: day("2024-01-08"), Value: 1},
	}
	holdings := []model.PositionPnL{{Ticker: "AAPL", Quantity: 2, CurrentPrice: f(999)}}
	prices := map[string][]model.HistoryPoint{
		"AAPL": {
			{Date: day("2024-01-08"), Value: 12},
			{Date: day("2024-01-06"), Value: 10},
		},
	}

	ds := history.BuildSeries(total, holdings, prices)
	s := ds.Series[1]

	if s.Approximated {
		t.Error("Expected historical series not to be approximated")
	}
	want := []*float64{nil, f(20), f(20), f(24)}
	for i, w := range want {
		got := s.Points[i].Value
		switch {
		case w == nil && got != nil:
			t.Errorf("Point %d: expected gap, got %v", i, *got)
		case w != nil && (got == nil || *got != *w):
			t.Errorf("Point %d: expected %v, got %v", i, *w, got)
		}
	}
}

// TestBuildSeries_ColorSlots tests deterministic color assignment.
//
// WHY: Colors follow position order modulo the palette so that a legend keeps
// its colors across renders.
func TestBuildSeries_ColorSlots(t *testing.T) {
	holdings := make([]model.PositionPnL, len(history.Palette)+2)
	for i := range holdings {
		holdings[i] = model.PositionPnL{Ticker: string(rune('A' + i)), Quantity: 1, CurrentPrice: f(1)}
	}

	ds := history.BuildSeries(nil, holdings, nil)

	for i, s := range ds.Series[1:] {
		want := i % len(history.Palette)
		if s.ColorSlot != want {
			t.Errorf("Series %s: expected slot %d, got %d", s.Key, want, s.ColorSlot)
		}
		if s.Color != history.Palette[want] {
			t.Errorf("Series %s: expected color %s, got %s", s.Key, history.Palette[want], s.Color)
		}
	}
}

// TestMergeHoldings tests that repeated purchases of a ticker become one holding.
//
// WHY: series are keyed by ticker; two positions in AAPL must not produce two
// AAPL series that the visibility map cannot tell apart.
func TestMergeHoldings(t *testing.T) {
	positions := []model.PositionPnL{
		{Ticker: "AAPL", Quantity: 10, CurrentPrice: f(150)},
		{Ticker: "TSLA", Quantity: 1, Error: model.ErrorPriceUnavailable},
		{Ticker: "AAPL", Quantity: 5, CurrentPrice: f(150)},
	}

	merged := history.MergeHoldings(positions)

	if len(merged) != 2 {
		t.Fatalf("Expected 2 holdings, got %d", len(merged))
	}
	if merged[0].Ticker != "AAPL" || merged[0].Quantity != 15 {
		t.Errorf("Expected 15 AAPL first, got %+v", merged[0])
	}
	if merged[0].CurrentValue == nil || *merged[0].CurrentValue != 2250 {
		t.Errorf("Expected AAPL value 2250, got %v", merged[0].CurrentValue)
	}
	if merged[1].Ticker != "TSLA" || merged[1].CurrentPrice != nil || merged[1].CurrentValue != nil {
		t.Errorf("Expected unpriced TSLA, got %+v", merged[1])
	}
	if positions[0].Quantity != 10 {
		t.Errorf("Expected input to be left untouched")
	}
}
