package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/app"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/format"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

type valueCmd struct {
	open     Opener
	out      io.Writer
	username string
	currency string
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "show the current valuation of a portfolio" }
func (*valueCmd) Usage() string {
	return `value -user <username> [-currency <code>]

  Prices every position at the latest close and prints the profit and loss
  per position and for the whole portfolio. Positions without a price are
  shown as N/A and left out of the totals.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	userFlag(f, &c.username)
	f.StringVar(&c.currency, "currency", format.DefaultCurrency, "Currency used to display amounts")
}

func (c *valueCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if !requireUser(c.username, c.out) {
		return subcommands.ExitUsageError
	}
	return withApp(ctx, c.open, c.out, func(a *app.App) error {
		v, err := a.Portfolio.GetValuation(ctx, c.username)
		if err != nil {
			return err
		}
		c.print(v)
		return nil
	})
}

func (c *valueCmd) print(v model.PortfolioValuation) {
	if len(v.PositionsPnL) == 0 {
		fmt.Fprintln(c.out, "No positions to calculate PnL.")
		return
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "TICKER\tQUANTITY\tPRICE\tVALUE\tPNL\tPNL %\t")
	for _, p := range v.PositionsPnL {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			p.Ticker,
			format.Quantity(p.Quantity),
			format.MoneyPtr(p.CurrentPrice, c.currency),
			format.MoneyPtr(p.CurrentValue, c.currency),
			signedPtr(p.PnL, c.currency),
			format.Percent(p.PnLPercent),
		)
	}
	fmt.Fprintf(w, "TOTAL\t\t\t%s\t%s\t%s\t\n",
		format.Money(v.TotalValue, c.currency),
		format.SignedMoney(v.TotalPnL, c.currency),
		format.Percent(v.TotalPnLPercent),
	)
	w.Flush()

	for _, p := range v.PositionsPnL {
		if p.Error != "" {
			fmt.Fprintf(c.out, "%s: %s\n", p.Ticker, p.Error)
		}
	}
}

func signedPtr(v *float64, currency string) string {
	if v == nil {
		return format.NotAvailable
	}
	return format.SignedMoney(*v, currency)
}
