package history_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/history"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

func dailyPoints(from string, n int) []model.HistoryPoint {
	start := day(from)
	points := make([]model.HistoryPoint, n)
	for i := range points {
		points[i] = model.HistoryPoint{Date: start.AddDate(0, 0, i), Value: float64(i)}
	}
	return points
}

// TestFilterRange_OneWeek tests the inclusive cutoff.
//
// WHY: A point dated exactly at the cutoff belongs to the window.
func TestFilterRange_OneWeek(t *testing.T) {
	points := append(dailyPoints("2023-12-31", 1), dailyPoints("2024-01-01", 10)...)
	now := day("2024-01-08")

	got := history.FilterRange(points, history.Range1W, now)

	if len(got) != 10 {
		t.Fatalf("Expected 10 points, got %d", len(got))
	}
	if !got[0].Date.Equal(day("2024-01-01")) {
		t.Errorf("Expected first point 2024-01-01, got %s", got[0].Date.Format("2006-01-02"))
	}
}

// TestFilterRange_TimeOfDay tests that now is reduced to its calendar date.
//
// WHY: A request issued in the afternoon must not drop the point dated at
// midnight seven days earlier.
func TestFilterRange_TimeOfDay(t *testing.T) {
	points := dailyPoints("2024-01-01", 10)
	now := time.Date(2024, 1, 8, 15, 30, 0, 0, time.UTC)

	got := history.FilterRange(points, history.Range1W, now)

	if len(got) != 10 {
		t.Errorf("Expected 10 points, got %d", len(got))
	}
}

func TestFilterRange_Properties(t *testing.T) {
	points := dailyPoints("2023-01-01", 500)
	now := day("2024-05-01")

	t.Run("ALL returns input unchanged", func(t *testing.T) {
		got := history.FilterRange(points, history.RangeAll, now)
		if !reflect.DeepEqual(got, points) {
			t.Error("Expected ALL to return the input unchanged")
		}
	})

	for _, r := range history.Ranges {
		t.Run("idempotent "+string(r), func(t *testing.T) {
			once := history.FilterRange(points, r, now)
			twice := history.FilterRange(once, r, now)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("FilterRange not idempotent for %s: %d vs %d points", r, len(once), len(twice))
			}
		})
	}

	t.Run("window lengths", func(t *testing.T) {
		tests := map[history.Range]int{
			history.Range1W: 8,
			history.Range1M: 31,
			history.Range3M: 91,
			history.Range6M: 181,
			history.Range1Y: 366,
		}
		// points end 2024-05-14, so the window from cutoff to now plus the 13 future days.
		for r, want := range tests {
			got := history.FilterRange(points, r, now)
			if len(got) != want+13 {
				t.Errorf("%s: expected %d points, got %d", r, want+13, len(got))
			}
		}
	})
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    history.Range
		wantErr bool
	}{
		{in: "", want: history.DefaultRange},
		{in: "1w", want: history.Range1W},
		{in: " 6M ", want: history.Range6M},
		{in: "all", want: history.RangeAll},
		{in: "2Y", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := history.ParseRange(tt.in)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidRange) {
					t.Errorf("Expected ErrInvalidRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFilterDataset(t *testing.T) {
	total := dailyPoints("2024-01-01", 30)
	holdings := []model.PositionPnL{{Ticker: "AAPL", Quantity: 1, CurrentPrice: f(10)}}
	ds := history.BuildSeries(total, holdings, nil)

	filtered := history.FilterDataset(ds, history.Range1W, day("2024-01-30"))

	for _, s := range filtered.Series {
		if len(s.Points) != 8 {
			t.Errorf("Series %s: expected 8 points, got %d", s.Key, len(s.Points))
		}
	}
	if len(ds.Series[0].Points) != 30 {
		t.Error("FilterDataset modified its input")
	}
}
