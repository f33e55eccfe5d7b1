// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"telegram-fishing-bot/internal/game/reward"
	"telegram-fishing-bot/internal/model"
	"telegram-fishing-bot/internal/pkg/lock"
)

// ErrIDExhausted is returned when two consecutive item id draws collide.
var ErrIDExhausted = errors.New("could not allocate a unique item id")

// UserStore is the persistence surface the service needs for user records.
type UserStore interface {
	Ensure(ctx context.Context, telegramID int64, username string) error
	GetByID(ctx context.Context, telegramID int64) (*model.User, error)
	Increment(ctx context.Context, telegramID int64, field string, delta int64) error
}

// ItemStore is the persistence surface for collectible items.
type ItemStore interface {
	Insert(ctx context.Context, item *model.Item) error
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Item, error)
}

// DuplicateIDChecker reports whether a store error is an id collision.
// Matches repository.ErrDuplicateID without importing the package here.
type DuplicateIDChecker func(error) bool

// FishingService applies game outcomes to persistent user state. All writes
// for one user go through that user's lock.
type FishingService struct {
	users UserStore
	items ItemStore
	isDup DuplicateIDChecker
	locks *lock.UserLock
}

// NewFishingService creates a new FishingService instance.
func NewFishingService(users UserStore, items ItemStore, isDup DuplicateIDChecker) *FishingService {
	return &FishingService{
		users: users,
		items: items,
		isDup: isDup,
		locks: lock.NewUserLock(),
	}
}

// EnsureAngler lazily registers the user and grants one experience point
// for entering a game. Called at the start of every session command.
func (s *FishingService) EnsureAngler(ctx context.Context, telegramID int64, username string) error {
	return s.locks.WithLock(telegramID, func() error {
		if err := s.users.Ensure(ctx, telegramID, username); err != nil {
			return fmt.Errorf("failed to register angler: %w", err)
		}
		if err := s.users.Increment(ctx, telegramID, model.FieldXP, 1); err != nil {
			return fmt.Errorf("failed to grant experience: %w", err)
		}
		return nil
	})
}

// AwardCatch persists a successful cast. A plain catch increments the fish
// counter; an item catch mints a new inventory row. An id collision is
// retried once with a fresh id.
func (s *FishingService) AwardCatch(ctx context.Context, telegramID int64, r reward.CastReward) error {
	return s.locks.WithLock(telegramID, func() error {
		if !r.Item {
			if err := s.users.Increment(ctx, telegramID, model.FieldFish, 1); err != nil {
				return fmt.Errorf("failed to credit fish: %w", err)
			}
			return nil
		}

		for attempt := 0; attempt < 2; attempt++ {
			id, err := model.NewItemID()
			if err != nil {
				return fmt.Errorf("failed to mint item id: %w", err)
			}
			err = s.items.Insert(ctx, &model.Item{
				ID:       id,
				OwnerID:  telegramID,
				ItemType: int(r.Type),
				Rating:   int(r.Rating),
			})
			if err == nil {
				return nil
			}
			if s.isDup != nil && s.isDup(err) {
				log.Warn().
					Int64("user_id", telegramID).
					Str("item_id", id).
					Msg("Item id collision, retrying with a fresh id")
				continue
			}
			return fmt.Errorf("failed to store item: %w", err)
		}
		return ErrIDExhausted
	})
}

// AwardPondScore credits the payout of a finished pond session. A zero
// payout writes nothing.
func (s *FishingService) AwardPondScore(ctx context.Context, telegramID int64, score int64) error {
	if score <= 0 {
		return nil
	}
	return s.locks.WithLock(telegramID, func() error {
		if err := s.users.Increment(ctx, telegramID, model.FieldFish, score); err != nil {
			return fmt.Errorf("failed to credit pond payout: %w", err)
		}
		return nil
	})
}

// Stats retrieves the user's record for the /stats command.
func (s *FishingService) Stats(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.users.GetByID(ctx, telegramID)
}

// Items retrieves the user's collection, oldest first.
func (s *FishingService) Items(ctx context.Context, telegramID int64) ([]model.Item, error) {
	return s.items.ListByOwner(ctx, telegramID)
}
