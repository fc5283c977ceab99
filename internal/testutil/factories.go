package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// CreateUser inserts a user with the given username.
//
// Example usage:
//
//	user := testutil.CreateUser(t, db, "alice")
func CreateUser(t *testing.T, db *sql.DB, username string) model.User {
	t.Helper()

	createdAt := time.Now().UTC().Truncate(time.Second)
	_, err := db.Exec(`INSERT INTO users (username, created_at) VALUES (?, ?)`, username, createdAt.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return model.User{Username: username, CreatedAt: createdAt}
}

// PositionBuilder provides a fluent interface for creating test positions.
//
// Example usage:
//
//	// Simple creation with defaults (10 shares at 100)
//	position := testutil.NewPosition("alice").Build(t, db)
//
//	// Customized position
//	position := testutil.NewPosition("alice").
//	    WithTicker("AAPL").
//	    WithQuantity(3).
//	    WithPurchaseDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).
//	    Build(t, db)
type PositionBuilder struct {
	ID            string
	Username      string
	Ticker        string
	Quantity      float64
	PurchasePrice *float64
	PurchaseDate  *time.Time
	CreatedAt     time.Time
}

// NewPosition creates a PositionBuilder with sensible defaults.
func NewPosition(username string) *PositionBuilder {
	price := 100.0
	return &PositionBuilder{
		ID:            MakeID(),
		Username:      username,
		Ticker:        MakeTicker("TEST"),
		Quantity:      10,
		PurchasePrice: &price,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

// WithID sets a custom ID.
func (b *PositionBuilder) WithID(id string) *PositionBuilder {
	b.ID = id
	return b
}

// WithTicker sets the ticker.
func (b *PositionBuilder) WithTicker(ticker string) *PositionBuilder {
	b.Ticker = ticker
	return b
}

// WithQuantity sets the number of shares.
func (b *PositionBuilder) WithQuantity(quantity float64) *PositionBuilder {
	b.Quantity = quantity
	return b
}

// WithPurchasePrice sets an explicit purchase price.
func (b *PositionBuilder) WithPurchasePrice(price float64) *PositionBuilder {
	b.PurchasePrice = &price
	return b
}

// WithPurchaseDate sets the purchase date and clears the purchase price, so
// that the cost basis is resolved from the date.
func (b *PositionBuilder) WithPurchaseDate(date time.Time) *PositionBuilder {
	b.PurchaseDate = &date
	b.PurchasePrice = nil
	return b
}

// WithCreatedAt sets the creation time, which determines position order.
func (b *PositionBuilder) WithCreatedAt(createdAt time.Time) *PositionBuilder {
	b.CreatedAt = createdAt
	return b
}

// Build creates the position in the database and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	query := `
		INSERT INTO positions (id, username, ticker, quantity, purchase_price, purchase_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var purchaseDate any
	if b.PurchaseDate != nil {
		purchaseDate = b.PurchaseDate.UTC().Format("2006-01-02")
	}

	_, err := db.Exec(query, b.ID, b.Username, b.Ticker, b.Quantity, b.PurchasePrice, purchaseDate, b.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return model.Position{
		ID:            b.ID,
		Username:      b.Username,
		Ticker:        b.Ticker,
		Quantity:      b.Quantity,
		PurchasePrice: b.PurchasePrice,
		PurchaseDate:  b.PurchaseDate,
		CreatedAt:     b.CreatedAt,
	}
}

// CreatePosition creates a position for ticker with the given quantity bought at price.
//
// Example usage:
//
//	position := testutil.CreatePosition(t, db, "alice", "AAPL", 10, 150)
func CreatePosition(t *testing.T, db *sql.DB, username, ticker string, quantity, price float64) model.Position {
	t.Helper()
	return NewPosition(username).WithTicker(ticker).WithQuantity(quantity).WithPurchasePrice(price).Build(t, db)
}

// SnapshotBuilder provides a fluent interface for creating portfolio history snapshots.
//
// Example usage:
//
//	testutil.NewSnapshot("alice").WithDate(day).WithValue(1500).Build(t, db)
type SnapshotBuilder struct {
	Username string
	Date     time.Time
	Value    float64
	Cost     float64
}

// NewSnapshot creates a SnapshotBuilder for yesterday with value 1000.
func NewSnapshot(username string) *SnapshotBuilder {
	now := time.Now().UTC()
	return &SnapshotBuilder{
		Username: username,
		Date:     time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC),
		Value:    1000,
		Cost:     1000,
	}
}

// WithDate sets the snapshot date.
func (b *SnapshotBuilder) WithDate(date time.Time) *SnapshotBuilder {
	b.Date = date
	return b
}

// WithValue sets the total value.
func (b *SnapshotBuilder) WithValue(value float64) *SnapshotBuilder {
	b.Value = value
	return b
}

// WithCost sets the total cost.
func (b *SnapshotBuilder) WithCost(cost float64) *SnapshotBuilder {
	b.Cost = cost
	return b
}

// Build creates the snapshot in the database and returns it.
func (b *SnapshotBuilder) Build(t *testing.T, db *sql.DB) model.PortfolioSnapshot {
	t.Helper()

	calculatedAt := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO portfolio_history (username, date, value, cost, calculated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.Username, b.Date.UTC().Format("2006-01-02"), b.Value, b.Cost, calculatedAt.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test snapshot: %v", err)
	}

	return model.PortfolioSnapshot{
		Username:     b.Username,
		Date:         b.Date,
		Value:        b.Value,
		Cost:         b.Cost,
		CalculatedAt: calculatedAt,
	}
}

// CreateDailyHistory creates one snapshot per day starting at start, one for each value.
//
// Example usage:
//
//	testutil.CreateDailyHistory(t, db, "alice", start, 1000, 1010, 1005)
func CreateDailyHistory(t *testing.T, db *sql.DB, username string, start time.Time, values ...float64) []model.PortfolioSnapshot {
	t.Helper()

	snapshots := make([]model.PortfolioSnapshot, 0, len(values))
	for i, v := range values {
		snapshots = append(snapshots, NewSnapshot(username).WithDate(start.AddDate(0, 0, i)).WithValue(v).Build(t, db))
	}
	return snapshots
}
