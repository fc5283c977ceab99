package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// PriceRepository provides data access methods for the price_cache table.
// It stores daily closes fetched from the quote provider.
type PriceRepository struct {
	db  *sql.DB
	tx  *sql.Tx
	now func() time.Time
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db, now: time.Now}
}

// WithTx returns a repository that runs its statements in tx.
func (r *PriceRepository) WithTx(tx *sql.Tx) *PriceRepository {
	return &PriceRepository{
		db:  r.db,
		tx:  tx,
		now: r.now,
	}
}

func (r *PriceRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetClose retrieves the stored close of ticker on date.
// The boolean is false when no close is stored.
func (r *PriceRepository) GetClose(ticker string, date time.Time) (float64, bool, error) {
	query := `SELECT close FROM price_cache WHERE ticker = ? AND date = ?`

	var price float64
	err := r.getQuerier().QueryRow(query, ticker, formatDate(date)).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query price_cache table: %w", err)
	}
	return price, true, nil
}

// ListCloses retrieves the stored closes of ticker between from and to
// inclusive, in ascending date order.
func (r *PriceRepository) ListCloses(ticker string, from, to time.Time) ([]model.PricePoint, error) {
	query := `
        SELECT ticker, date, close
        FROM price_cache
        WHERE ticker = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `

	rows, err := r.getQuerier().Query(query, ticker, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query price_cache table: %w", err)
	}
	defer rows.Close()

	points := []model.PricePoint{}

	for rows.Next() {
		var (
			p    model.PricePoint
			date string
		)
		if err := rows.Scan(&p.Ticker, &date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price_cache table results: %w", err)
		}
		if p.Date, err = ParseTime(date); err != nil {
			return nil, fmt.Errorf("failed to parse price_cache date: %w", err)
		}
		points = append(points, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_cache table: %w", err)
	}

	return points, nil
}

// SaveCloses stores closes, replacing existing entries for the same ticker and day.
// Outside a transaction the batch is written atomically.
func (r *PriceRepository) SaveCloses(ctx context.Context, points []model.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	if r.tx != nil {
		return r.saveCloses(ctx, points)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := r.WithTx(tx).saveCloses(ctx, points); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price_cache: %w", err)
	}
	return nil
}

func (r *PriceRepository) saveCloses(ctx context.Context, points []model.PricePoint) error {
	query := `
        INSERT INTO price_cache (ticker, date, close, fetched_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(ticker, date) DO UPDATE SET
            close = excluded.close,
            fetched_at = excluded.fetched_at
    `

	fetchedAt := formatTimestamp(r.now())
	for _, p := range points {
		if _, err := r.getQuerier().ExecContext(ctx, query, p.Ticker, formatDate(p.Date), p.Close, fetchedAt); err != nil {
			return fmt.Errorf("failed to insert price_cache for %s on %s: %w", p.Ticker, formatDate(p.Date), err)
		}
	}
	return nil
}
