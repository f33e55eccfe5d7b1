// Package pond implements the grid-reveal minigame. A session lays out a
// grid of cells; water cells conceal a catch, junk, or the hazard behind a
// small reveal count, decorative cells are inert scenery. Revealing costs a
// try (decorative cells aside); the session ends on the hazard, on an
// exhausted tries budget, or on timeout. Every mutation is guarded on the
// session and cell state so stale clicks are no-ops.
package pond

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"telegram-fishing-bot/internal/game/reward"
)

// CellKind distinguishes playable water cells from inert scenery.
type CellKind int

const (
	KindWater CellKind = iota
	KindDecorative
)

// EndReason records which terminal path ended a session.
type EndReason int

const (
	EndNone EndReason = iota
	EndHazard
	EndCompleted // tries exhausted
	EndTimeout
)

// Errors for pond session operations.
var (
	ErrSessionNotFound = errors.New("no such pond session")
	ErrNotOwner        = errors.New("action from a user other than the session owner")
	ErrStale           = errors.New("session or cell no longer accepts reveals")
	ErrBadCell         = errors.New("cell index out of range")
)

// Config holds the pond session tunables.
type Config struct {
	Rows           int
	Cols           int
	Tries          int
	SessionTimeout time.Duration
}

// DefaultConfig returns the shipped tunables: a 5x5 grid, 10 tries, 60s
// session timeout.
func DefaultConfig() Config {
	return Config{Rows: 5, Cols: 5, Tries: 10, SessionTimeout: 60 * time.Second}
}

// Construction weights: decorative 0.6 vs water 1.0, scaled to integers.
const (
	decorativeWeight = 6
	waterWeight      = 10
)

// decorativeIcons are the cosmetic fills for decorative cells.
var decorativeIcons = []string{"\U0001F33F", "\U0001FAB7", "\U0001F986", "\U0001FAA8"}

// Cell is one slot in the grid.
type Cell struct {
	Kind CellKind

	// Decorative cells only.
	Icon string // empty means blank scenery
	Used bool   // one-shot visual toggle

	// Water cells only.
	Remaining int  // reveals left until the content freezes
	Touched   bool // at least one reveal happened
	Frozen    bool
	Content   reward.CellContent // concealed value; authoritative once Frozen
}

// Session is one in-flight pond game, scoped to one user.
type Session struct {
	ID      string
	OwnerID int64
	ChatID  int64

	mu     sync.Mutex
	cells  []Cell
	tries  int
	score  int
	log    []string // distinct content names revealed, in order
	ended  bool
	reason EndReason
}

// CellView is a render snapshot of one cell.
type CellView struct {
	Kind    CellKind
	Icon    string
	Used    bool
	Touched bool
	Frozen  bool
	Content reward.CellContent // valid only when Frozen
}

// View is a render snapshot of a session.
type View struct {
	ID     string
	Rows   int
	Cols   int
	Cells  []CellView
	Tries  int
	Score  int
	Ended  bool
	Reason EndReason
	Log    []string
}

// RevealResult reports the effect of one reveal.
type RevealResult struct {
	View
	// FrozeCell is true when this reveal dropped the cell's remaining count
	// to zero and fixed its content.
	FrozeCell bool
	Content   reward.CellContent // valid when FrozeCell
	// Payout is the score to convert to fish, non-zero at most once per
	// session, on the hazard and completion paths only.
	Payout int
}

// Manager owns all active pond sessions, keyed by session id.
type Manager struct {
	cfg     Config
	sampler *reward.Sampler

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a pond session manager.
func NewManager(cfg Config, sampler *reward.Sampler) *Manager {
	if cfg.Rows < 1 {
		cfg.Rows = 1
	}
	if cfg.Cols < 1 {
		cfg.Cols = 1
	}
	if cfg.Tries < 1 {
		cfg.Tries = 1
	}
	return &Manager{
		cfg:      cfg,
		sampler:  sampler,
		sessions: make(map[string]*Session),
	}
}

// Start creates a new session with freshly rolled cells and returns its
// initial render snapshot.
func (m *Manager) Start(ownerID, chatID int64) View {
	n := m.cfg.Rows * m.cfg.Cols
	cells := make([]Cell, n)
	for i := range cells {
		if m.sampler.Intn(decorativeWeight+waterWeight) < decorativeWeight {
			c := Cell{Kind: KindDecorative}
			if m.sampler.Intn(2) == 1 {
				c.Icon = decorativeIcons[m.sampler.Intn(len(decorativeIcons))]
			}
			cells[i] = c
			continue
		}
		cells[i] = Cell{
			Kind:      KindWater,
			Remaining: 1 + m.sampler.Intn(3),
			Content:   m.sampler.CellContent(),
		}
	}

	s := &Session{
		ID:      newSessionID(),
		OwnerID: ownerID,
		ChatID:  chatID,
		cells:   cells,
		tries:   m.cfg.Tries,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return m.snapshotLocked(s)
}

// Reveal applies one click on a cell for the acting user. Decorative cells
// toggle their one-shot used state and touch nothing else. Water cells burn
// one reveal; on an intermediate reveal the concealed content is re-rolled,
// on the last reveal the cell freezes and its content takes effect.
func (m *Manager) Reveal(id string, cell int, actorID int64) (RevealResult, error) {
	s, ok := m.get(id)
	if !ok {
		return RevealResult{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if actorID != s.OwnerID {
		return RevealResult{}, ErrNotOwner
	}
	if s.ended {
		return RevealResult{}, ErrStale
	}
	if cell < 0 || cell >= len(s.cells) {
		return RevealResult{}, ErrBadCell
	}

	c := &s.cells[cell]

	if c.Kind == KindDecorative {
		if c.Used {
			return RevealResult{}, ErrStale
		}
		c.Used = true
		return RevealResult{View: m.viewLocked(s)}, nil
	}

	if c.Frozen {
		return RevealResult{}, ErrStale
	}

	c.Touched = true
	c.Remaining--
	if c.Remaining > 0 {
		// Still concealed; the value shown on the final reveal may differ.
		c.Content = m.sampler.CellContent()
		return RevealResult{View: m.viewLocked(s)}, nil
	}

	c.Frozen = true
	s.appendLog(c.Content.Name)

	res := RevealResult{FrozeCell: true, Content: c.Content}

	switch c.Content.Kind {
	case reward.ContentHazard:
		s.end(EndHazard)
		res.Payout = s.score
	case reward.ContentCatch:
		s.score += c.Content.Value
		s.tries--
	case reward.ContentJunk:
		s.tries--
	}

	if !s.ended && s.tries <= 0 {
		s.end(EndCompleted)
		res.Payout = s.score
	}

	res.View = m.viewLocked(s)
	return res, nil
}

// Expire ends a still-active session on timeout. Timeout pays nothing; any
// score already converted stays as it was. Returns the final view and true
// if this call performed the transition.
func (m *Manager) Expire(id string) (View, bool) {
	s, ok := m.get(id)
	if !ok {
		return View{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return View{}, false
	}
	s.end(EndTimeout)
	return m.viewLocked(s), true
}

// Snapshot returns the current render view of a session.
func (m *Manager) Snapshot(id string) (View, bool) {
	s, ok := m.get(id)
	if !ok {
		return View{}, false
	}
	return m.snapshotLocked(s), true
}

// Remove discards a session once its final render has been delivered.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
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

// adopt registers an externally built session; tests use it to force cell
// layouts.
func (m *Manager) adopt(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
}

func (m *Manager) snapshotLocked(s *Session) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.viewLocked(s)
}

// viewLocked builds a View; the caller must hold s.mu.
func (m *Manager) viewLocked(s *Session) View {
	cells := make([]CellView, len(s.cells))
	for i, c := range s.cells {
		cells[i] = CellView{
			Kind:    c.Kind,
			Icon:    c.Icon,
			Used:    c.Used,
			Touched: c.Touched,
			Frozen:  c.Frozen,
		}
		if c.Frozen {
			cells[i].Content = c.Content
		}
	}
	log := make([]string, len(s.log))
	copy(log, s.log)

	return View{
		ID:     s.ID,
		Rows:   m.cfg.Rows,
		Cols:   m.cfg.Cols,
		Cells:  cells,
		Tries:  s.tries,
		Score:  s.score,
		Ended:  s.ended,
		Reason: s.reason,
		Log:    log,
	}
}

// end freezes the whole session; the ended flag gates every reveal, so
// individual cells need no further marking. The caller must hold s.mu.
func (s *Session) end(reason EndReason) {
	s.ended = true
	s.reason = reason
}

// appendLog records a distinct revealed content name, preserving order.
func (s *Session) appendLog(name string) {
	for _, n := range s.log {
		if n == name {
			return
		}
	}
	s.log = append(s.log, name)
}

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
