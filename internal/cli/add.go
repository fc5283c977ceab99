package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"

	"github.com/google/subcommands"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/app"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/format"
)

type addCmd struct {
	open     Opener
	out      io.Writer
	username string
	ticker   string
	quantity float64
	price    float64
	date     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a position to a portfolio" }
func (*addCmd) Usage() string {
	return `add -user <username> -ticker <ticker> -quantity <n> [-price <p> | -date <YYYY-MM-DD>]

  Adds a position, creating the user when it does not exist yet. Without
  -price the purchase price is the close on -date.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	userFlag(f, &c.username)
	f.StringVar(&c.ticker, "ticker", "", "Ticker symbol (required)")
	f.Float64Var(&c.quantity, "quantity", 0, "Number of shares (required)")
	f.Float64Var(&c.price, "price", math.NaN(), "Purchase price per share")
	f.StringVar(&c.date, "date", "", "Purchase date, YYYY-MM-DD")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if !requireUser(c.username, c.out) {
		return subcommands.ExitUsageError
	}

	req := request.CreatePositionRequest{Ticker: c.ticker, Quantity: c.quantity}
	if !math.IsNaN(c.price) {
		req.PurchasePrice = &c.price
	}
	if c.date != "" {
		req.PurchaseDate = &c.date
	}

	return withApp(ctx, c.open, c.out, func(a *app.App) error {
		if _, err := a.User.Login(ctx, c.username); err != nil {
			return err
		}
		p, err := a.Position.AddPosition(ctx, c.username, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Added %s %s for %s (id %s)\n", format.Quantity(p.Quantity), p.Ticker, c.username, p.ID)
		return nil
	})
}
