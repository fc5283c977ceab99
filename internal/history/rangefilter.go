package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// Range is a named window relative to a reference instant.
type Range string

const (
	Range1W  Range = "1W"
	Range1M  Range = "1M"
	Range3M  Range = "3M"
	Range6M  Range = "6M"
	Range1Y  Range = "1Y"
	RangeAll Range = "ALL"
)

// DefaultRange is used when no range is requested.
const DefaultRange = Range3M

var rangeDays = map[Range]int{
	Range1W: 7,
	Range1M: 30,
	Range3M: 90,
	Range6M: 180,
	Range1Y: 365,
}

// Ranges lists the supported ranges in display order.
var Ranges = []Range{Range1W, Range1M, Range3M, Range6M, Range1Y, RangeAll}

// ParseRange parses a range name case-insensitively. An empty string yields DefaultRange.
func ParseRange(s string) (Range, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultRange, nil
	}
	r := Range(s)
	if r == RangeAll {
		return r, nil
	}
	if _, ok := rangeDays[r]; !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidRange, s)
	}
	return r, nil
}

// Days returns the length of the window. ok is false for ALL and unknown ranges.
func (r Range) Days() (days int, ok bool) {
	days, ok = rangeDays[r]
	return days, ok
}

// Cutoff returns the first date included by r at now: the UTC calendar date
// of now minus the range length. ok is false when r does not bound the series.
func Cutoff(r Range, now time.Time) (cutoff time.Time, ok bool) {
	days, ok := r.Days()
	if !ok {
		return time.Time{}, false
	}
	return DateOf(now).AddDate(0, 0, -days), true
}

// Dated is implemented by points that belong to a calendar date.
type Dated interface {
	When() time.Time
}

// FilterRange keeps the points dated on or after the cutoff of r at now.
// ALL returns points unchanged. The input is never modified and filtering an
// already filtered slice with the same arguments returns the same points.
func FilterRange[P Dated](points []P, r Range, now time.Time) []P {
	cutoff, ok := Cutoff(r, now)
	if !ok {
		return points
	}

	out := make([]P, 0, len(points))
	for _, p := range points {
		if !p.When().Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// FilterDataset applies FilterRange to every series of ds.
func FilterDataset(ds model.ChartDataset, r Range, now time.Time) model.ChartDataset {
	out := model.ChartDataset{Series: make([]model.Series, len(ds.Series))}
	for i, s := range ds.Series {
		s.Points = FilterRange(s.Points, r, now)
		out.Series[i] = s
	}
	return out
}
