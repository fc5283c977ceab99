package model

import "time"

// TotalSeriesKey identifies the aggregate portfolio series. It can never be hidden.
const TotalSeriesKey = "TOTAL"

// HistoryPoint is the total portfolio value on a calendar date.
type HistoryPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// When returns the point's date.
func (p HistoryPoint) When() time.Time { return p.Date }

// SeriesPoint is a point of a chart series. A nil Value is a gap.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// When returns the point's date.
func (p SeriesPoint) When() time.Time { return p.Date }

// Series is one line of the portfolio chart.
// Approximated marks per-asset series valued with today's price for every
// past date because no historical quotes were available.
type Series struct {
	Key          string        `json:"key"`
	Label        string        `json:"label"`
	ColorSlot    int           `json:"color_slot"`
	Color        string        `json:"color"`
	Approximated bool          `json:"approximated"`
	Points       []SeriesPoint `json:"points"`
}

// ChartDataset holds the TOTAL series first followed by one series per asset,
// all sharing the TOTAL date axis.
type ChartDataset struct {
	Series []Series `json:"series"`
}

// Total returns the TOTAL series.
func (d ChartDataset) Total() (Series, bool) {
	for _, s := range d.Series {
		if s.Key == TotalSeriesKey {
			return s, true
		}
	}
	return Series{}, false
}

// PortfolioSnapshot is one row of the persisted portfolio history.
type PortfolioSnapshot struct {
	Username     string
	Date         time.Time
	Value        float64
	Cost         float64
	CalculatedAt time.Time
}
