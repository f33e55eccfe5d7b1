// Package model defines the data models for the fishing bot.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// User represents a registered angler. All counters start at zero and are
// only ever incremented by game outcomes.
type User struct {
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	Balance    int64     `db:"balance"`
	Fish       int64     `db:"fish"`
	XP         int64     `db:"xp"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Item represents one collectible drop. Items are immutable after creation
// and never change owner.
type Item struct {
	ID        string    `db:"id"` // 16 hex characters
	OwnerID   int64     `db:"owner_id"`
	ItemType  int       `db:"item_type"`
	Rating    int       `db:"rating"`
	CreatedAt time.Time `db:"created_at"`
}

// Incrementable user counter fields. Only these may be passed to
// UserRepository.Increment.
const (
	FieldBalance = "balance"
	FieldFish    = "fish"
	FieldXP      = "xp"
)

// NewItemID generates a random 16-hex-character item id (8 random bytes).
func NewItemID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
