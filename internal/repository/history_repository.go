package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// HistoryRepository provides data access methods for the portfolio_history table.
// It holds one total-value snapshot per user per day.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the provided database connection.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// UpsertSnapshot stores the snapshot, replacing any snapshot of the same user and day.
func (r *HistoryRepository) UpsertSnapshot(ctx context.Context, s model.PortfolioSnapshot) error {
	query := `
        INSERT INTO portfolio_history (username, date, value, cost, calculated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(username, date) DO UPDATE SET
            value = excluded.value,
            cost = excluded.cost,
            calculated_at = excluded.calculated_at
    `

	_, err := r.db.ExecContext(ctx, query,
		s.Username,
		formatDate(s.Date),
		s.Value,
		s.Cost,
		formatTimestamp(s.CalculatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio_history: %w", err)
	}
	return nil
}

// GetHistory retrieves the snapshots of a user in ascending date order.
// Returns an empty slice if no snapshots exist.
func (r *HistoryRepository) GetHistory(username string) ([]model.PortfolioSnapshot, error) {
	query := `
        SELECT username, date, value, cost, calculated_at
        FROM portfolio_history
        WHERE username = ?
        ORDER BY date ASC
    `

	rows, err := r.db.Query(query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio_history table: %w", err)
	}
	defer rows.Close()

	snapshots := []model.PortfolioSnapshot{}

	for rows.Next() {
		var (
			s                  model.PortfolioSnapshot
			date, calculatedAt string
		)
		if err := rows.Scan(&s.Username, &date, &s.Value, &s.Cost, &calculatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio_history table results: %w", err)
		}

		if s.Date, err = ParseTime(date); err != nil {
			return nil, fmt.Errorf("failed to parse portfolio_history date: %w", err)
		}
		if s.CalculatedAt, err = ParseTime(calculatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse portfolio_history calculated_at: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio_history table: %w", err)
	}

	return snapshots, nil
}
