package lock

import (
	"sync"
	"sync/atomic"
	"testing"

	"pgregory.net/rapid"
)

// TestConcurrentCounterSafetyProperty checks that concurrent counter writes
// for the same user, each holding the user's lock, end at the value a
// sequential execution would produce.
func TestConcurrentCounterSafetyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(0, 100000).Draw(t, "initial")
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")

		deltas := make([]int64, numOps)
		expected := initial
		for i := range deltas {
			deltas[i] = rapid.Int64Range(-500, 500).Draw(t, "delta")
			expected += deltas[i]
		}

		userID := rapid.Int64Range(1, 1000000).Draw(t, "userID")

		ul := NewUserLock()
		counter := initial

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, d := range deltas {
			go func(delta int64) {
				defer wg.Done()
				ul.Lock(userID)
				defer ul.Unlock(userID)
				counter += delta
			}(d)
		}
		wg.Wait()

		if counter != expected {
			t.Fatalf("counter mismatch: expected %d, got %d (initial=%d, numOps=%d)",
				expected, counter, initial, numOps)
		}
	})
}

// TestWithLockFunctionProperty checks that WithLock serializes the wrapped
// functions.
func TestWithLockFunctionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(0, 100000).Draw(t, "initial")
		numOps := rapid.IntRange(5, 30).Draw(t, "numOps")
		perOp := rapid.Int64Range(1, 100).Draw(t, "perOp")

		expected := initial + int64(numOps)*perOp
		userID := rapid.Int64Range(1, 1000000).Draw(t, "userID")

		ul := NewUserLock()
		counter := initial

		var wg sync.WaitGroup
		wg.Add(numOps)
		for i := 0; i < numOps; i++ {
			go func() {
				defer wg.Done()
				_ = ul.WithLock(userID, func() error {
					counter += perOp
					return nil
				})
			}()
		}
		wg.Wait()

		if counter != expected {
			t.Fatalf("counter mismatch with WithLock: expected %d, got %d", expected, counter)
		}
	})
}

// TestMultipleUsersIndependentLocksProperty checks that locks for different
// users do not interfere with each other's counters.
func TestMultipleUsersIndependentLocksProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numUsers := rapid.IntRange(2, 10).Draw(t, "numUsers")
		opsPerUser := rapid.IntRange(5, 20).Draw(t, "opsPerUser")

		ul := NewUserLock()

		counters := make(map[int64]*int64)
		for i := 0; i < numUsers; i++ {
			var c int64
			counters[int64(i+1)] = &c
		}

		var wg sync.WaitGroup
		wg.Add(numUsers * opsPerUser)
		for userID := int64(1); userID <= int64(numUsers); userID++ {
			for j := 0; j < opsPerUser; j++ {
				go func(uid int64) {
					defer wg.Done()
					ul.Lock(uid)
					defer ul.Unlock(uid)
					*counters[uid]++
				}(userID)
			}
		}
		wg.Wait()

		for userID, c := range counters {
			if *c != int64(opsPerUser) {
				t.Fatalf("user %d counter mismatch: expected %d, got %d", userID, opsPerUser, *c)
			}
		}
	})
}

// TestTryLockProperty checks that simultaneous TryLock attempts admit at
// least one winner and leave the lock free afterwards.
func TestTryLockProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		userID := rapid.Int64Range(1, 1000000).Draw(t, "userID")
		numAttempts := rapid.IntRange(5, 20).Draw(t, "numAttempts")

		ul := NewUserLock()

		var successCount atomic.Int32
		var wg sync.WaitGroup
		wg.Add(numAttempts)

		startCh := make(chan struct{})
		for i := 0; i < numAttempts; i++ {
			go func() {
				defer wg.Done()
				<-startCh
				if ul.TryLock(userID) {
					successCount.Add(1)
					ul.Unlock(userID)
				}
			}()
		}
		close(startCh)
		wg.Wait()

		if successCount.Load() < 1 {
			t.Fatalf("at least one TryLock should succeed, got %d successes", successCount.Load())
		}

		if !ul.TryLock(userID) {
			t.Fatal("lock should be available after all attempts complete")
		}
		ul.Unlock(userID)
	})
}

// TestLockUnlockSymmetryProperty checks that symmetric lock/unlock cycles
// leave the lock available.
func TestLockUnlockSymmetryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		userID := rapid.Int64Range(1, 1000000).Draw(t, "userID")
		numCycles := rapid.IntRange(1, 50).Draw(t, "numCycles")

		ul := NewUserLock()
		for i := 0; i < numCycles; i++ {
			ul.Lock(userID)
			ul.Unlock(userID)
		}

		if !ul.TryLock(userID) {
			t.Fatal("lock should be available after symmetric lock/unlock cycles")
		}
		ul.Unlock(userID)
	})
}
