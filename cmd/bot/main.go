// Package main is the entry point for the Telegram fishing bot.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-fishing-bot/internal/bot"
	"telegram-fishing-bot/internal/config"
	"telegram-fishing-bot/internal/game/cast"
	"telegram-fishing-bot/internal/game/inventory"
	"telegram-fishing-bot/internal/game/pond"
	"telegram-fishing-bot/internal/game/reward"
	"telegram-fishing-bot/internal/pkg/db"
	"telegram-fishing-bot/internal/repository"
	"telegram-fishing-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	itemRepo := repository.NewItemRepository(dbPool.Pool)

	// Initialize services
	fishingService := service.NewFishingService(userRepo, itemRepo, func(err error) bool {
		return errors.Is(err, repository.ErrDuplicateID)
	})

	// One shared sampler backs both games
	sampler := reward.NewSampler(nil)

	castManager := cast.NewManager(cast.Config{
		MinDelay:       time.Duration(cfg.Cast.MinDelaySeconds) * time.Second,
		MaxDelay:       time.Duration(cfg.Cast.MaxDelaySeconds) * time.Second,
		ReactionWindow: time.Duration(cfg.Cast.ReactionWindowSeconds) * time.Second,
		SessionTimeout: time.Duration(cfg.Cast.SessionTimeoutSeconds) * time.Second,
	}, sampler)

	pondManager := pond.NewManager(pond.Config{
		Rows:           cfg.Pond.Rows,
		Cols:           cfg.Pond.Cols,
		Tries:          cfg.Pond.Tries,
		SessionTimeout: time.Duration(cfg.Pond.SessionTimeoutSeconds) * time.Second,
	}, sampler)

	pageManager := inventory.NewManager()

	// Create bot dependencies
	deps := &bot.Dependencies{
		Config:         cfg,
		FishingService: fishingService,
		CastManager:    castManager,
		PondManager:    pondManager,
		PageManager:    pageManager,
	}

	telegramBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create users table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			balance BIGINT NOT NULL DEFAULT 0,
			fish BIGINT NOT NULL DEFAULT 0,
			xp BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: users table created")

	// Migration 2: Create items table. seq preserves insertion order for
	// the inventory listing; id is the random hex handle.
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS items (
			seq BIGSERIAL,
			id CHAR(16) PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
			item_type INT NOT NULL,
			rating INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_items_owner_seq ON items(owner_id, seq);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: items table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
