// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-fishing-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrBadField     = errors.New("field is not incrementable")
)

// UserRepository handles user record persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Ensure inserts a zero-valued record for the user iff absent. Idempotent;
// an existing record only has its username refreshed.
func (r *UserRepository) Ensure(ctx context.Context, telegramID int64, username string) error {
	const query = `
		INSERT INTO users (telegram_id, username, balance, fish, xp, created_at, updated_at)
		VALUES ($1, $2, 0, 0, 0, NOW(), NOW())
		ON CONFLICT (telegram_id)
		DO UPDATE SET username = EXCLUDED.username, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, telegramID, username); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their Telegram ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, telegramID int64) (*model.User, error) {
	const query = `
		SELECT telegram_id, username, balance, fish, xp, created_at, updated_at
		FROM users
		WHERE telegram_id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&user.TelegramID,
		&user.Username,
		&user.Balance,
		&user.Fish,
		&user.XP,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// Increment atomically adds delta to one of the user's counters. The field
// name is interpolated into the statement, so it is checked against the
// fixed whitelist first. Creates no record if the user is absent; callers
// Ensure first.
func (r *UserRepository) Increment(ctx context.Context, telegramID int64, field string, delta int64) error {
	switch field {
	case model.FieldBalance, model.FieldFish, model.FieldXP:
	default:
		return fmt.Errorf("%w: %q", ErrBadField, field)
	}

	query := fmt.Sprintf(
		`UPDATE users SET %s = %s + $2, updated_at = NOW() WHERE telegram_id = $1`,
		field, field,
	)

	result, err := r.pool.Exec(ctx, query, telegramID, delta)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
