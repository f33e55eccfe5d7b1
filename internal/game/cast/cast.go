// Package cast implements the timed-reaction cast minigame. A session is
// armed with a random delay; once the delay elapses a bite goes live, and
// the owner has one reaction window to strike. Every transition is guarded
// on the session's state so terminal sessions ignore late or repeated
// actions.
package cast

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"telegram-fishing-bot/internal/game/reward"
)

// State is the cast session lifecycle state.
type State int

const (
	// StateArmed: delay countdown running, strikes are premature.
	StateArmed State = iota
	// StateLive: bite available, the reaction clock is running.
	StateLive
	// StateResolved: terminal, struck in time or too late.
	StateResolved
	// StateExpired: terminal, no strike within the session timeout.
	StateExpired
)

// Errors for cast session operations.
var (
	ErrSessionNotFound = errors.New("no such cast session")
	ErrNotOwner        = errors.New("action from a user other than the session owner")
	ErrNotLive         = errors.New("session is not live")
)

// Config holds the cast session tunables.
type Config struct {
	MinDelay       time.Duration // earliest bite
	MaxDelay       time.Duration // latest bite
	ReactionWindow time.Duration // max reaction time counted as a success
	SessionTimeout time.Duration // overall lifetime of one session
}

// DefaultConfig returns the shipped tunables: bite after 3-7s, 3s reaction
// window, 30s session timeout.
func DefaultConfig() Config {
	return Config{
		MinDelay:       3 * time.Second,
		MaxDelay:       7 * time.Second,
		ReactionWindow: 3 * time.Second,
		SessionTimeout: 30 * time.Second,
	}
}

// Session is one in-flight cast, scoped to one user.
type Session struct {
	ID      string
	OwnerID int64
	ChatID  int64
	Delay   time.Duration

	mu        sync.Mutex
	state     State
	biteStart time.Time
}

// Outcome is the result of a resolving strike.
type Outcome struct {
	Success  bool
	Reaction time.Duration
	Reward   reward.CastReward // valid only when Success
}

// Manager owns all active cast sessions, keyed by session id.
type Manager struct {
	cfg     Config
	sampler *reward.Sampler

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a cast session manager.
func NewManager(cfg Config, sampler *reward.Sampler) *Manager {
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	return &Manager{
		cfg:      cfg,
		sampler:  sampler,
		sessions: make(map[string]*Session),
	}
}

// Start creates a new armed session for the given user with a random delay
// drawn uniformly from [MinDelay, MaxDelay].
func (m *Manager) Start(ownerID, chatID int64) *Session {
	delay := m.cfg.MinDelay
	if span := int((m.cfg.MaxDelay - m.cfg.MinDelay) / time.Millisecond); span > 0 {
		delay += time.Duration(m.sampler.Intn(span+1)) * time.Millisecond
	}

	s := &Session{
		ID:      newSessionID(),
		OwnerID: ownerID,
		ChatID:  chatID,
		Delay:   delay,
		state:   StateArmed,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Bite fires the scheduled Armed -> Live transition and records the bite
// start timestamp, exactly once. Returns false if the session is gone or
// already past Armed.
func (m *Manager) Bite(id string, now time.Time) bool {
	s, ok := m.get(id)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateArmed {
		return false
	}
	s.state = StateLive
	s.biteStart = now
	return true
}

// Strike resolves a live session for the acting user. A strike within the
// reaction window succeeds and draws one reward; a slower strike resolves as
// a failure. Strikes on missing or non-live sessions are rejected with a
// sentinel error and change nothing.
func (m *Manager) Strike(id string, actorID int64, now time.Time) (Outcome, error) {
	s, ok := m.get(id)
	if !ok {
		return Outcome{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if actorID != s.OwnerID {
		return Outcome{}, ErrNotOwner
	}
	// Covers premature strikes while armed, racing double-strikes, and
	// strikes after expiry. A zero bite start cannot happen while live, but
	// treat it as stale rather than trust the scheduler.
	if s.state != StateLive || s.biteStart.IsZero() {
		return Outcome{}, ErrNotLive
	}

	s.state = StateResolved

	out := Outcome{Reaction: now.Sub(s.biteStart)}
	if out.Reaction <= m.cfg.ReactionWindow {
		out.Success = true
		out.Reward = m.sampler.CastReward()
	}

	m.remove(id)
	return out, nil
}

// Expire moves a session to its terminal expired state if no strike resolved
// it first. Returns true if this call performed the transition.
func (m *Manager) Expire(id string) bool {
	s, ok := m.get(id)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateResolved || s.state == StateExpired {
		return false
	}
	s.state = StateExpired
	m.remove(id)
	return true
}

// State reports a session's current state.
func (m *Manager) State(id string) (State, bool) {
	s, ok := m.get(id)
	if !ok {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, true
}

// Count returns the number of tracked sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// newSessionID returns a short random id for callback routing.
func newSessionID() string {
	var b [6]byte
	if _, err := crand.Read(b[:]); err != nil {
		n := time.Now().UnixNano()
		for i := range b {
			b[i] = byte(n >> (8 * i))
		}
	}
	return hex.EncodeToString(b[:])
}
