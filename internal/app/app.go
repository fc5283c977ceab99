// Package app assembles the database, price provider and services shared by
// the server and the command line tool.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/pricing"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/visibility"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/yahoo"
)

// Features lists the optional capabilities reported by the version endpoint.
var Features = map[string]bool{
	"history_chart":     true,
	"symbol_search":     true,
	"scheduled_history": true,
}

// App holds the wired dependencies of one process.
type App struct {
	DB       *sql.DB
	Prices   *pricing.CachingResolver
	Searcher *pricing.SymbolSearcher

	User      *service.UserService
	Position  *service.PositionService
	Portfolio *service.PortfolioService
	Snapshot  *service.SnapshotService
	System    *service.SystemService
}

// New opens and migrates the database and wires the services. The market
// data provider is chosen by cfg.Pricing.Provider.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	return NewWithYahoo(ctx, cfg, yahoo.NewFinanceClient(), log)
}

// NewWithYahoo is New with an explicit Yahoo Finance client.
func NewWithYahoo(ctx context.Context, cfg *config.Config, yc yahoo.Client, log zerolog.Logger) (*App, error) {
	if err := ensureDir(cfg.Database.Path); err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	version, err := database.Migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("path", cfg.Database.Path).Int64("schema_version", version).Msg("Database ready")

	provider, err := pricing.NewProvider(cfg.Pricing.Provider, cfg.Pricing.AlphaVantageKey, yc)
	if err != nil {
		db.Close()
		return nil, err
	}
	prices := pricing.NewCachingResolver(provider, repository.NewPriceRepository(db), cfg.Pricing.QuoteCacheTTL, log)

	vis := visibility.NewRegistry()
	userRepo := repository.NewUserRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	portfolio := service.NewPortfolioService(userRepo, positionRepo, historyRepo, prices, vis, cfg.Pricing.QuoteConcurrency, log)

	return &App{
		DB:        db,
		Prices:    prices,
		Searcher:  pricing.NewSymbolSearcher(yc),
		User:      service.NewUserService(userRepo, vis, log),
		Position:  service.NewPositionService(userRepo, positionRepo, vis),
		Portfolio: portfolio,
		Snapshot:  service.NewSnapshotService(userRepo, historyRepo, portfolio, log),
		System:    service.NewSystemService(db, Features),
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

// ensureDir creates the directory of a file database.
func ensureDir(dbPath string) error {
	if dbPath == ":memory:" || dbPath == "" {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}
