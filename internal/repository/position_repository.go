package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// PositionRepository provides data access methods for the positions table.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// GetPositions retrieves all positions of a user in the order they were added.
// Returns an empty slice if the user holds no positions.
func (r *PositionRepository) GetPositions(username string) ([]model.Position, error) {
	query := `
        SELECT id, username, ticker, quantity, purchase_price, purchase_date, created_at
        FROM positions
        WHERE username = ?
        ORDER BY created_at ASC, rowid ASC
    `

	rows, err := r.db.Query(query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}

	for rows.Next() {
		var (
			p             model.Position
			purchasePrice sql.NullFloat64
			purchaseDate  sql.NullString
			createdAt     string
		)

		err := rows.Scan(
			&p.ID,
			&p.Username,
			&p.Ticker,
			&p.Quantity,
			&purchasePrice,
			&purchaseDate,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan positions table results: %w", err)
		}

		if purchasePrice.Valid {
			v := purchasePrice.Float64
			p.PurchasePrice = &v
		}
		if purchaseDate.Valid {
			d, err := ParseTime(purchaseDate.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse purchase_date of position %s: %w", p.ID, err)
			}
			p.PurchaseDate = &d
		}
		p.CreatedAt, err = ParseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at of position %s: %w", p.ID, err)
		}

		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions table: %w", err)
	}

	return positions, nil
}

// GetTickers returns the distinct tickers held by a user in first-added order.
func (r *PositionRepository) GetTickers(username string) ([]string, error) {
	positions, err := r.GetPositions(username)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(positions))
	tickers := []string{}
	for _, p := range positions {
		if !seen[p.Ticker] {
			seen[p.Ticker] = true
			tickers = append(tickers, p.Ticker)
		}
	}
	return tickers, nil
}

// InsertPosition stores a new position.
func (r *PositionRepository) InsertPosition(ctx context.Context, p model.Position) error {
	query := `
        INSERT INTO positions (id, username, ticker, quantity, purchase_price, purchase_date, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `

	var purchaseDate any
	if p.PurchaseDate != nil {
		purchaseDate = formatDate(*p.PurchaseDate)
	}

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Username,
		p.Ticker,
		p.Quantity,
		p.PurchasePrice,
		purchaseDate,
		formatTimestamp(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}

	return nil
}
