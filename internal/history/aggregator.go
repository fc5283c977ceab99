// Package history reshapes portfolio value history into chart series and
// windows them to named time ranges.
package history

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// TotalLabel is the legend label of the aggregate series.
const TotalLabel = "Total Portfolio Value"

// TotalColor is the line color of the aggregate series.
const TotalColor = "rgba(75, 192, 192, 1)"

// Palette holds the per-asset line colors. Asset series take
// Palette[index % len(Palette)] in position order.
var Palette = []string{
	"rgba(75, 192, 192, 0.7)",
	"rgba(255, 99, 132, 0.7)",
	"rgba(54, 162, 235, 0.7)",
	"rgba(255, 206, 86, 0.7)",
	"rgba(153, 102, 255, 0.7)",
	"rgba(255, 159, 64, 0.7)",
	"rgba(46, 204, 113, 0.7)",
	"rgba(142, 68, 173, 0.7)",
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SortPoints returns a copy of points sorted ascending by date.
func SortPoints(points []model.HistoryPoint) []model.HistoryPoint {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b model.HistoryPoint) int {
		return a.Date.Compare(b.Date)
	})
	return sorted
}

// BuildSeries builds the chart dataset from the total portfolio history and
// the valued holdings.
//
// The TOTAL series comes first and defines the date axis. Every holding gets a
// series on that axis. When closes for its ticker are present in prices, the
// value at each date is quantity times the latest close on or before that
// date, with gaps before the first known close. Otherwise the series falls
// back to quantity times the current price on every date and is flagged
// Approximated; a holding without a current price then has only gaps.
func BuildSeries(total []model.HistoryPoint, holdings []model.PositionPnL, prices map[string][]model.HistoryPoint) model.ChartDataset {
	axis := SortPoints(total)

	totalPoints := make([]model.SeriesPoint, len(axis))
	for i, p := range axis {
		v := p.Value
		totalPoints[i] = model.SeriesPoint{Date: DateOf(p.Date), Value: &v}
	}

	dataset := model.ChartDataset{
		Series: make([]model.Series, 0, len(holdings)+1),
	}
	dataset.Series = append(dataset.Series, model.Series{
		Key:    model.TotalSeriesKey,
		Label:  TotalLabel,
		Color:  TotalColor,
		Points: totalPoints,
	})

	for i, h := range holdings {
		slot := i % len(Palette)
		s := model.Series{
			Key:       h.Ticker,
			Label:     assetLabel(h),
			ColorSlot: slot,
			Color:     Palette[slot],
		}

		if closes := prices[h.Ticker]; len(closes) > 0 {
			s.Points = historicalPoints(axis, h.Quantity, SortPoints(closes))
		} else {
			s.Approximated = true
			s.Label += " (approx.)"
			s.Points = constantPoints(axis, h)
		}
		dataset.Series = append(dataset.Series, s)
	}

	return dataset
}

func assetLabel(h model.PositionPnL) string {
	return fmt.Sprintf("%s (%s shares)", h.Ticker, strconv.FormatFloat(h.Quantity, 'f', -1, 64))
}

// historicalPoints values quantity at the latest close on or before each axis date.
func historicalPoints(axis []model.HistoryPoint, quantity float64, closes []model.HistoryPoint) []model.SeriesPoint {
	points := make([]model.SeriesPoint, len(axis))
	j := -1
	for i, p := range axis {
		day := DateOf(p.Date)
		for j+1 < len(closes) && !DateOf(closes[j+1].Date).After(day) {
			j++
		}
		points[i] = model.SeriesPoint{Date: day}
		if j >= 0 {
			v := quantity * closes[j].Value
			points[i].Value = &v
		}
	}
	return points
}

// constantPoints holds quantity * current price across the whole axis.
func constantPoints(axis []model.HistoryPoint, h model.PositionPnL) []model.SeriesPoint {
	points := make([]model.SeriesPoint, len(axis))
	for i, p := range axis {
		points[i] = model.SeriesPoint{Date: DateOf(p.Date)}
		if h.CurrentPrice != nil {
			v := h.Quantity * *h.CurrentPrice
			points[i].Value = &v
		}
	}
	return points
}

// MergeHoldings combines valued positions of the same ticker into one holding
// per ticker, in order of first appearance, so that every ticker gets exactly
// one chart series. Quantities are summed, the current price is taken from
// the first priced position of the ticker and the value is recomputed.
func MergeHoldings(positions []model.PositionPnL) []model.PositionPnL {
	merged := make([]model.PositionPnL, 0, len(positions))
	index := make(map[string]int, len(positions))

	for _, p := range positions {
		i, ok := index[p.Ticker]
		if !ok {
			index[p.Ticker] = len(merged)
			merged = append(merged, model.PositionPnL{
				Ticker:       p.Ticker,
				Quantity:     p.Quantity,
				CurrentPrice: p.CurrentPrice,
				Error:        p.Error,
			})
			continue
		}
		h := &merged[i]
		h.Quantity += p.Quantity
		if h.CurrentPrice == nil && p.CurrentPrice != nil {
			h.CurrentPrice = p.CurrentPrice
			h.Error = ""
		}
	}

	for i := range merged {
		if merged[i].CurrentPrice != nil {
			v := merged[i].Quantity * *merged[i].CurrentPrice
			merged[i].CurrentValue = &v
		}
	}
	return merged
}
