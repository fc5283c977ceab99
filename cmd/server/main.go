package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/app"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/logging"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logging.SetGlobalLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start application")
	}
	defer a.Close()

	if cfg.Auth.InternalAPIKey == "" {
		logger.Warn().Msg("INTERNAL_API_KEY is not set; protected endpoints will refuse every request")
	}

	// Daily history snapshot
	sched := scheduler.New(logger)
	if err := sched.AddJob(cfg.Snapshot.Schedule, scheduler.NewSnapshotJob(a.Snapshot)); err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule snapshot job")
	}
	sched.Start()
	defer sched.Stop()

	router := api.NewRouter(api.Services{
		System:    a.System,
		User:      a.User,
		Position:  a.Position,
		Portfolio: a.Portfolio,
		Snapshot:  a.Snapshot,
		Searcher:  a.Searcher,
	}, cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("provider", cfg.Pricing.Provider).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		logger.Error().Err(err).Msg("Server failed")
	}

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	logger.Info().Msg("Server exited")
}
