package app_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/app"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/testutil"
)

func testConfig(t *testing.T, provider string) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "nested", "portfolio.db")},
		Pricing: config.PricingConfig{
			Provider:         provider,
			QuoteConcurrency: 2,
			QuoteCacheTTL:    time.Minute,
		},
	}
}

// TestNewWithYahoo checks that the wired services value a portfolio through
// the caching resolver and the Yahoo provider.
//
// WHY: the server and the CLI share this wiring, so a missing piece here
// breaks both.
func TestNewWithYahoo(t *testing.T) {
	ctx := context.Background()

	t.Run("values positions through the configured provider", func(t *testing.T) {
		// Setup
		today := time.Now().UTC().Truncate(24 * time.Hour)
		client := testutil.NewMockYahooClient().
			WithSymbol("AAPL", testutil.CreateMockYahooResponseForCloses("AAPL", map[time.Time]float64{today: 160}))

		a, err := app.NewWithYahoo(ctx, testConfig(t, ""), client, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewWithYahoo() returned unexpected error: %v", err)
		}
		t.Cleanup(func() { a.Close() })

		if _, err := a.User.Login(ctx, "alice"); err != nil {
			t.Fatalf("Login() returned unexpected error: %v", err)
		}
		price := 150.0
		if _, err := a.Position.AddPosition(ctx, "alice", request.CreatePositionRequest{Ticker: "AAPL", Quantity: 10, PurchasePrice: &price}); err != nil {
			t.Fatalf("AddPosition() returned unexpected error: %v", err)
		}

		// Execute
		v, err := a.Portfolio.GetValuation(ctx, "alice")

		// Assert
		if err != nil {
			t.Fatalf("GetValuation() returned unexpected error: %v", err)
		}
		if v.TotalValue != 1600 {
			t.Errorf("Expected total value 1600, got %v", v.TotalValue)
		}
		if err := a.System.CheckHealth(); err != nil {
			t.Errorf("Expected healthy database, got %v", err)
		}
	})

	t.Run("rejects alpha vantage without a key", func(t *testing.T) {
		_, err := app.NewWithYahoo(ctx, testConfig(t, "alphavantage"), testutil.NewMockYahooClient(), zerolog.Nop())

		if !errors.Is(err, apperrors.ErrProviderNotConfigured) {
			t.Errorf("Expected ErrProviderNotConfigured, got %v", err)
		}
	})
}
