// Package search implements search-as-you-type over a symbol searcher.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// DefaultDelay is the quiet period after the last keystroke before a search is issued.
const DefaultDelay = 300 * time.Millisecond

// Searcher looks up symbols matching a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.SymbolMatch, error)
}

// Result is delivered for the latest query only.
type Result struct {
	Query   string
	Matches []model.SymbolMatch
	Err     error
}

// Debouncer issues a search once input has been quiet for a delay.
//
// Every Submit stops the pending timer and cancels the request in flight; a
// response belonging to an earlier Submit is dropped on arrival. deliver is
// called with the debouncer locked and must not call Submit or Close.
type Debouncer struct {
	searcher Searcher
	delay    time.Duration
	deliver  func(Result)

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// NewDebouncer returns a debouncer delivering results to deliver.
func NewDebouncer(s Searcher, delay time.Duration, deliver func(Result)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{searcher: s, delay: delay, deliver: deliver}
}

// Submit registers the current input. An empty query only cancels pending work.
func (d *Debouncer) Submit(query string) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.gen++
	d.stopLocked()

	if query == "" {
		return
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen, query) })
}

// Close cancels pending and in-flight work. Results arriving later are dropped.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.gen++
	d.stopLocked()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Debouncer) fire(gen uint64, query string) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = nil
	d.mu.Unlock()

	matches, err := d.searcher.Search(ctx, query)
	cancel()

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return
	}
	d.cancel = nil
	d.deliver(Result{Query: query, Matches: matches, Err: err})
}
