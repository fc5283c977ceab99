package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/app"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/cli"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	open := func(ctx context.Context) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		logger := logging.NewWithWriter(logging.Config{Level: cfg.Log.Level, Pretty: true}, os.Stderr)
		logging.SetGlobalLogger(logger)
		return app.New(ctx, cfg, logger)
	}
	for _, c := range cli.Commands(open, os.Stdin, os.Stdout) {
		commander.Register(c, "")
	}

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return int(commander.Execute(ctx))
}
