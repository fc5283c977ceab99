package testutil

import (
	"database/sql"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/valuation"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/visibility"
)

// Services bundles the services of one test database. They share a single
// visibility registry, like the server does.
type Services struct {
	User      *service.UserService
	Position  *service.PositionService
	Portfolio *service.PortfolioService
	Snapshot  *service.SnapshotService
	System    *service.SystemService
}

// NewTestServices wires every service against db, pricing through resolver.
//
// Example usage:
//
//	db := testutil.SetupTestDB(t)
//	svc := testutil.NewTestServices(t, db, testutil.NewStubResolver().WithPrice("AAPL", 150))
//	valuation, err := svc.Portfolio.GetValuation(ctx, "alice")
func NewTestServices(t *testing.T, db *sql.DB, resolver valuation.Resolver) *Services {
	t.Helper()

	log := zerolog.Nop()
	vis := visibility.NewRegistry()
	userRepo := repository.NewUserRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	portfolio := service.NewPortfolioService(userRepo, positionRepo, historyRepo, resolver, vis, 2, log)

	return &Services{
		User:      service.NewUserService(userRepo, vis, log),
		Position:  service.NewPositionService(userRepo, positionRepo, vis),
		Portfolio: portfolio,
		Snapshot:  service.NewSnapshotService(userRepo, historyRepo, portfolio, log),
		System:    NewTestSystemService(t, db),
	}
}

// NewTestSystemService creates a SystemService for testing.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db, map[string]bool{"history_chart": true})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeTicker generates a ticker symbol for testing.
//
// Example usage:
//
//	ticker := testutil.MakeTicker("AAPL")
//	// Returns: "AAPL1A2B"
func MakeTicker(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeUsername generates a unique username for testing.
//
// Example usage:
//
//	username := testutil.MakeUsername("alice")
//	// Returns: "alice_abc123"
func MakeUsername(base string) string {
	if base == "" {
		base = "user"
	}
	return base + "_" + strings.ToLower(randomAlphanumeric(6))
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
