package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/model"
)

// UserRepository provides data access methods for the users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUser retrieves a user by username.
// Returns apperrors.ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetUser(username string) (model.User, error) {
	query := `SELECT username, created_at FROM users WHERE username = ?`

	var (
		u         model.User
		createdAt string
	)
	err := r.db.QueryRow(query, username).Scan(&u.Username, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query users table: %w", err)
	}

	u.CreatedAt, err = ParseTime(createdAt)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse created_at for user %s: %w", username, err)
	}
	return u, nil
}

// EnsureUser creates the user if it does not exist yet.
// Returns true when a new row was inserted.
func (r *UserRepository) EnsureUser(ctx context.Context, username string, now time.Time) (bool, error) {
	query := `INSERT OR IGNORE INTO users (username, created_at) VALUES (?, ?)`

	result, err := r.db.ExecContext(ctx, query, username, formatTimestamp(now))
	if err != nil {
		return false, fmt.Errorf("failed to insert user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListUsernames returns all usernames in alphabetical order.
func (r *UserRepository) ListUsernames() ([]string, error) {
	rows, err := r.db.Query(`SELECT username FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users table: %w", err)
	}
	defer rows.Close()

	usernames := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan users table results: %w", err)
		}
		usernames = append(usernames, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users table: %w", err)
	}
	return usernames, nil
}
