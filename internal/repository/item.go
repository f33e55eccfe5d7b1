package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-fishing-bot/internal/model"
)

// ErrDuplicateID is returned when an item insert collides on the random id.
// Callers regenerate the id and retry once.
var ErrDuplicateID = errors.New("item id already exists")

// uniqueViolation is the SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// ItemRepository handles collectible item persistence. Items are written
// once and never updated or deleted.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository creates a new ItemRepository instance.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// Insert appends a new item row.
func (r *ItemRepository) Insert(ctx context.Context, item *model.Item) error {
	const query = `
		INSERT INTO items (id, owner_id, item_type, rating, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := r.pool.Exec(ctx, query, item.ID, item.OwnerID, item.ItemType, item.Rating)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateID
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// ListByOwner retrieves all items owned by a user, in insertion order.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	const query = `
		SELECT id, owner_id, item_type, rating, created_at
		FROM items
		WHERE owner_id = $1
		ORDER BY seq
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		err := rows.Scan(&item.ID, &item.OwnerID, &item.ItemType, &item.Rating, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}
