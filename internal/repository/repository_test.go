// Package repository integration tests. They use testcontainers-go to spin
// up a PostgreSQL container and skip when Docker is unavailable.
package repository

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"telegram-fishing-bot/internal/model"
)

// checkDockerAvailable checks if Docker is available and running.
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

// setupTestDB creates a PostgreSQL container and returns a connection pool.
// Skips the test if Docker is not available.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, runMigrations(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return pool, cleanup
}

// runMigrations applies the database schema.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			balance BIGINT NOT NULL DEFAULT 0,
			fish BIGINT NOT NULL DEFAULT 0,
			xp BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS items (
			seq BIGSERIAL,
			id CHAR(16) PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES users(telegram_id),
			item_type INT NOT NULL,
			rating INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_items_owner_seq ON items(owner_id, seq);
	`)
	return err
}

func TestEnsureIsIdempotent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewUserRepository(pool)

	require.NoError(t, repo.Ensure(ctx, 100, "angler"))
	require.NoError(t, repo.Ensure(ctx, 100, "angler"))

	user, err := repo.GetByID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.TelegramID)
	assert.Equal(t, "angler", user.Username)
	assert.Zero(t, user.Balance)
	assert.Zero(t, user.Fish)
	assert.Zero(t, user.XP)
}

func TestEnsureRefreshesUsername(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewUserRepository(pool)

	require.NoError(t, repo.Ensure(ctx, 100, "old"))
	require.NoError(t, repo.Increment(ctx, 100, model.FieldFish, 5))
	require.NoError(t, repo.Ensure(ctx, 100, "new"))

	user, err := repo.GetByID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "new", user.Username)
	// Counters survive the refresh.
	assert.Equal(t, int64(5), user.Fish)
}

func TestGetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewUserRepository(pool).GetByID(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIncrementFields(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewUserRepository(pool)
	require.NoError(t, repo.Ensure(ctx, 100, "angler"))

	require.NoError(t, repo.Increment(ctx, 100, model.FieldFish, 1))
	require.NoError(t, repo.Increment(ctx, 100, model.FieldFish, 3))
	require.NoError(t, repo.Increment(ctx, 100, model.FieldXP, 1))
	require.NoError(t, repo.Increment(ctx, 100, model.FieldBalance, 7))

	user, err := repo.GetByID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(4), user.Fish)
	assert.Equal(t, int64(1), user.XP)
	assert.Equal(t, int64(7), user.Balance)
}

func TestIncrementRejectsUnknownField(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewUserRepository(pool)
	require.NoError(t, repo.Ensure(ctx, 100, "angler"))

	err := repo.Increment(ctx, 100, "balance; DROP TABLE users", 1)
	assert.ErrorIs(t, err, ErrBadField)
}

func TestIncrementMissingUser(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	err := NewUserRepository(pool).Increment(context.Background(), 999, model.FieldFish, 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConcurrentIncrementsAreAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewUserRepository(pool)
	require.NoError(t, repo.Ensure(ctx, 100, "angler"))

	const workers = 10
	const perWorker = 10

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_ = repo.Increment(ctx, 100, model.FieldFish, 1)
			}
		}()
	}
	wg.Wait()

	user, err := repo.GetByID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), user.Fish)
}

func TestInsertAndListItems(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	users := NewUserRepository(pool)
	items := NewItemRepository(pool)

	require.NoError(t, users.Ensure(ctx, 100, "angler"))
	require.NoError(t, users.Ensure(ctx, 200, "other"))

	ids := make([]string, 3)
	for i := range ids {
		id, err := model.NewItemID()
		require.NoError(t, err)
		require.Len(t, id, 16)
		ids[i] = id

		require.NoError(t, items.Insert(ctx, &model.Item{
			ID:       id,
			OwnerID:  100,
			ItemType: i,
			Rating:   i % 4,
		}))
	}
	require.NoError(t, items.Insert(ctx, &model.Item{ID: "ffffffffffffffff", OwnerID: 200}))

	got, err := items.ListByOwner(ctx, 100)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, item := range got {
		// Insertion order preserved.
		assert.Equal(t, ids[i], item.ID)
		assert.Equal(t, int64(100), item.OwnerID)
		assert.Equal(t, i, item.ItemType)
	}

	got, err = items.ListByOwner(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsertDuplicateID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	users := NewUserRepository(pool)
	items := NewItemRepository(pool)

	require.NoError(t, users.Ensure(ctx, 100, "angler"))

	item := &model.Item{ID: "00000000deadbeef", OwnerID: 100, ItemType: 1, Rating: 2}
	require.NoError(t, items.Insert(ctx, item))

	err := items.Insert(ctx, item)
	assert.ErrorIs(t, err, ErrDuplicateID)
}
