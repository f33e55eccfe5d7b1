// Property-based tests for cast session terminal-state idempotence.
package cast

import (
	mrand "math/rand"
	"testing"
	"time"

	"pgregory.net/rapid"

	"telegram-fishing-bot/internal/game/reward"
)

// TestCastResolvesAtMostOnceProperty drives a session with a random sequence
// of bites, strikes (from the owner and strangers, at random offsets) and
// expiries, and checks that at most one strike ever resolves and that
// successful rewards stay inside the catalogs.
func TestCastResolvesAtMostOnceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		window := time.Duration(rapid.IntRange(100, 3000).Draw(t, "windowMs")) * time.Millisecond

		cfg := Config{ReactionWindow: window, SessionTimeout: 30 * time.Second}
		m := NewManager(cfg, reward.NewSampler(mrand.New(mrand.NewSource(seed))))

		owner := rapid.Int64Range(1, 1000000).Draw(t, "owner")
		s := m.Start(owner, 1)

		t0 := time.Now()
		resolutions := 0

		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			offset := time.Duration(rapid.IntRange(0, 5000).Draw(t, "offsetMs")) * time.Millisecond
			now := t0.Add(offset)

			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				m.Bite(s.ID, now)
			case 1:
				out, err := m.Strike(s.ID, owner, now)
				if err == nil {
					resolutions++
					if out.Success && out.Reward.Item {
						if out.Reward.Type < 0 || int(out.Reward.Type) >= reward.ItemTypeCount {
							t.Fatalf("item type %d outside catalog", out.Reward.Type)
						}
						if out.Reward.Rating < 0 || int(out.Reward.Rating) >= reward.RatingCount {
							t.Fatalf("rating %d outside catalog", out.Reward.Rating)
						}
					}
				}
			case 2:
				stranger := owner + 1
				if _, err := m.Strike(s.ID, stranger, now); err == nil {
					t.Fatal("stranger strike resolved the session")
				}
			case 3:
				m.Expire(s.ID)
			}
		}

		if resolutions > 1 {
			t.Fatalf("session resolved %d times", resolutions)
		}
	})
}

// TestCastConcurrentStrikesProperty fires racing strikes from multiple
// goroutines; exactly zero or one may resolve.
func TestCastConcurrentStrikesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewManager(Config{ReactionWindow: time.Second}, reward.NewSampler(mrand.New(mrand.NewSource(1))))
		owner := rapid.Int64Range(1, 1000000).Draw(t, "owner")
		s := m.Start(owner, 1)

		t0 := time.Now()
		m.Bite(s.ID, t0)

		goroutines := rapid.IntRange(2, 8).Draw(t, "goroutines")
		resolved := make(chan struct{}, goroutines)
		done := make(chan struct{})

		for i := 0; i < goroutines; i++ {
			go func() {
				if _, err := m.Strike(s.ID, owner, t0.Add(100*time.Millisecond)); err == nil {
					resolved <- struct{}{}
				}
				done <- struct{}{}
			}()
		}
		for i := 0; i < goroutines; i++ {
			<-done
		}

		if n := len(resolved); n != 1 {
			t.Fatalf("expected exactly 1 resolution, got %d", n)
		}
	})
}
