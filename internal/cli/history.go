package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/google/subcommands"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/app"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/format"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/history"
)

type historyCmd struct {
	open     Opener
	out      io.Writer
	username string
	rng      string
	currency string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show the recorded value history of a portfolio" }
func (*historyCmd) Usage() string {
	return `history -user <username> [-range 1W|1M|3M|6M|1Y|ALL] [-currency <code>]

  Prints the recorded daily portfolio values, oldest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	userFlag(f, &c.username)
	f.StringVar(&c.rng, "range", string(history.RangeAll), "Time range")
	f.StringVar(&c.currency, "currency", format.DefaultCurrency, "Currency used to display amounts")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if !requireUser(c.username, c.out) {
		return subcommands.ExitUsageError
	}
	r, err := history.ParseRange(c.rng)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return withApp(ctx, c.open, c.out, func(a *app.App) error {
		points, err := a.Portfolio.GetHistory(c.username)
		if err != nil {
			return err
		}
		points = history.FilterRange(points, r, time.Now())
		if len(points) == 0 {
			fmt.Fprintln(c.out, "No history recorded.")
			return nil
		}
		for _, p := range points {
			fmt.Fprintf(c.out, "%s  %s\n", p.Date.Format("2006-01-02"), format.Money(p.Value, c.currency))
		}
		return nil
	})
}
