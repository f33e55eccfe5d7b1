// Property-based tests for the whitelist logic behind the middleware.
package bot

import (
	"testing"

	"pgregory.net/rapid"

	"telegram-fishing-bot/internal/config"
)

// TestWhitelistEnforcementProperty checks that a chat is allowed exactly
// when its id is on the configured whitelist.
func TestWhitelistEnforcementProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numChats := rapid.IntRange(1, 10).Draw(t, "numChats")
		chatIDs := make([]int64, numChats)
		for i := 0; i < numChats; i++ {
			// Group chat IDs are typically negative
			chatIDs[i] = -rapid.Int64Range(1, 1000000000).Draw(t, "chatID")
		}

		cfg := &config.Config{
			Whitelist: config.WhitelistConfig{
				Chats: chatIDs,
			},
		}

		testChatID := -rapid.Int64Range(1, 1000000000).Draw(t, "testChatID")

		isAllowed := cfg.IsChatAllowed(testChatID)

		expected := false
		for _, id := range chatIDs {
			if id == testChatID {
				expected = true
				break
			}
		}

		if isAllowed != expected {
			t.Fatalf("Whitelist check mismatch: chatID=%d, whitelistedChats=%v, expected=%v, got=%v",
				testChatID, chatIDs, expected, isAllowed)
		}
	})
}

// TestWhitelistEnforcementWithKnownChatProperty checks that a whitelisted
// chat is always allowed.
func TestWhitelistEnforcementWithKnownChatProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numChats := rapid.IntRange(1, 10).Draw(t, "numChats")
		chatIDs := make([]int64, numChats)
		for i := 0; i < numChats; i++ {
			chatIDs[i] = -rapid.Int64Range(1, 1000000000).Draw(t, "chatID")
		}

		cfg := &config.Config{
			Whitelist: config.WhitelistConfig{
				Chats: chatIDs,
			},
		}

		chatIndex := rapid.IntRange(0, numChats-1).Draw(t, "chatIndex")
		knownChatID := chatIDs[chatIndex]

		if !cfg.IsChatAllowed(knownChatID) {
			t.Fatalf("Known whitelisted chat ID %d should be allowed, whitelistedChats=%v", knownChatID, chatIDs)
		}
	})
}

// TestEmptyWhitelistAllowsAllChatsProperty checks the empty-whitelist
// special case.
func TestEmptyWhitelistAllowsAllChatsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := &config.Config{
			Whitelist: config.WhitelistConfig{
				Chats: []int64{},
			},
		}

		chatID := -rapid.Int64Range(1, 1000000000).Draw(t, "chatID")

		if !cfg.IsChatAllowed(chatID) {
			t.Fatalf("With empty whitelist, chat ID %d should be allowed", chatID)
		}
	})
}

// TestPrivateUserCacheProperty checks the allow-then-check round trip.
func TestPrivateUserCacheProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")

		AllowPrivateUser(userID)

		if !IsPrivateUserAllowed(userID) {
			t.Fatalf("User %d should be allowed after being added to private user cache", userID)
		}
	})
}
