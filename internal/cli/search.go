package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/app"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/search"
)

// resultWait bounds how long the interactive search waits for the answer to
// the last input line once input has ended.
const resultWait = 10 * time.Second

type searchCmd struct {
	open  Opener
	in    io.Reader
	out   io.Writer
	query string
	delay time.Duration
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "look up ticker symbols" }
func (*searchCmd) Usage() string {
	return `search [-query <text>] [-delay <duration>]

  With -query, prints the matches once. Without it, reads queries line by
  line from standard input and prints the matches of the latest line once
  typing has paused for -delay; answers to superseded lines are dropped.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "query", "", "Search once for this text")
	f.DurationVar(&c.delay, "delay", search.DefaultDelay, "Pause before an interactive query is sent")
}

func (c *searchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	return withApp(ctx, c.open, c.out, func(a *app.App) error {
		if c.query != "" {
			matches, err := a.Searcher.Search(ctx, c.query)
			if err != nil {
				return err
			}
			c.print(matches)
			return nil
		}
		return c.interactive(ctx, a.Searcher)
	})
}

func (c *searchCmd) interactive(ctx context.Context, s search.Searcher) error {
	results := make(chan search.Result, 1)
	d := search.NewDebouncer(s, c.delay, func(r search.Result) {
		// Keep only the newest result; deliver must not block.
		select {
		case <-results:
		default:
		}
		results <- r
	})
	defer d.Close()

	var last string
	scanner := bufio.NewScanner(c.in)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-results:
			c.deliver(r)
		case line, ok := <-lines:
			if !ok {
				return c.drain(ctx, last, results)
			}
			last = strings.TrimSpace(line)
			d.Submit(last)
		}
	}
}

// drain waits for the answer to the final query after input ended.
func (c *searchCmd) drain(ctx context.Context, last string, results <-chan search.Result) error {
	if last == "" {
		return nil
	}
	timeout := time.NewTimer(c.delay + resultWait)
	defer timeout.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return fmt.Errorf("no answer for %q", last)
		case r := <-results:
			c.deliver(r)
			if r.Query == last {
				return nil
			}
		}
	}
}

func (c *searchCmd) deliver(r search.Result) {
	if r.Err != nil {
		fmt.Fprintf(c.out, "%s: search failed: %v\n", r.Query, r.Err)
		return
	}
	fmt.Fprintf(c.out, "> %s\n", r.Query)
	c.print(r.Matches)
}

func (c *searchCmd) print(matches []model.SymbolMatch) {
	if len(matches) == 0 {
		fmt.Fprintln(c.out, "No matches.")
		return
	}
	for _, m := range matches {
		fmt.Fprintf(c.out, "%-10s %-40s %s\n", m.Ticker, m.Name, m.Exchange)
	}
}
