// Package visibility tracks which per-asset chart series are shown.
//
// The chart renders whatever the controller includes; it never owns the
// visible set itself.
package visibility

import (
	"maps"
	"sync"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// Controller maps tickers to a visible flag. The TOTAL series is always visible
// and tickers the controller has never seen are treated as visible.
type Controller struct {
	mu      sync.RWMutex
	visible map[string]bool
}

// New returns a controller with every ticker visible.
func New(tickers []string) *Controller {
	c := &Controller{visible: make(map[string]bool, len(tickers))}
	for _, t := range tickers {
		if t == model.TotalSeriesKey {
			continue
		}
		c.visible[t] = true
	}
	return c
}

// Track adds ticker as visible unless the controller already knows it.
func (c *Controller) Track(ticker string) {
	if ticker == model.TotalSeriesKey {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.visible[ticker]; !ok {
		c.visible[ticker] = true
	}
}

// Toggle flips the visibility of ticker and returns the new state.
// Toggling TOTAL is a no-op that returns true.
func (c *Controller) Toggle(ticker string) bool {
	if ticker == model.TotalSeriesKey {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.visible[ticker]
	if !ok {
		current = true
	}
	c.visible[ticker] = !current
	return !current
}

// Tracks reports whether ticker is one of the controller's tickers. TOTAL is
// always tracked.
func (c *Controller) Tracks(ticker string) bool {
	if ticker == model.TotalSeriesKey {
		return true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.visible[ticker]
	return ok
}

// IsVisible reports whether the series for ticker is shown.
func (c *Controller) IsVisible(ticker string) bool {
	if ticker == model.TotalSeriesKey {
		return true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.visible[ticker]
	return !ok || v
}

// Snapshot returns a copy of the ticker to visible mapping.
func (c *Controller) Snapshot() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.visible)
}

// Apply returns ds without the series that are currently hidden.
func (c *Controller) Apply(ds model.ChartDataset) model.ChartDataset {
	out := model.ChartDataset{Series: make([]model.Series, 0, len(ds.Series))}
	for _, s := range ds.Series {
		if c.IsVisible(s.Key) {
			out.Series = append(out.Series, s)
		}
	}
	return out
}
