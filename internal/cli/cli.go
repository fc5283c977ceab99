// Package cli implements the portfolioctl subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/subcommands"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/app"
)

// Opener builds the application for one command run.
type Opener func(ctx context.Context) (*app.App, error)

// Commands returns every portfolioctl subcommand. Results go to out,
// interactive input is read from in.
func Commands(open Opener, in io.Reader, out io.Writer) []subcommands.Command {
	return []subcommands.Command{
		&valueCmd{open: open, out: out},
		&historyCmd{open: open, out: out},
		&addCmd{open: open, out: out},
		&searchCmd{open: open, in: in, out: out},
	}
}

// withApp opens the application, runs fn and closes it again. Failures are
// reported on out.
func withApp(ctx context.Context, open Opener, out io.Writer, fn func(*app.App) error) subcommands.ExitStatus {
	a, err := open(ctx)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(a); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// requireUser reports a missing -user flag.
func requireUser(username string, out io.Writer) bool {
	if strings.TrimSpace(username) == "" {
		fmt.Fprintln(out, "Error: -user is required")
		return false
	}
	return true
}

func userFlag(f *flag.FlagSet, username *string) {
	f.StringVar(username, "user", "", "Username (required)")
}
