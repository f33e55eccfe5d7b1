// Package inventory implements the paginated item browser: a fixed-size
// window over a user's already-fetched item records with bounds-checked
// paging controls and an idempotent halt.
package inventory

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"telegram-fishing-bot/internal/game/reward"
	"telegram-fishing-bot/internal/model"
)

// PageSize is the number of item records shown per page.
const PageSize = 10

// Errors for paginator operations.
var (
	ErrSessionNotFound = errors.New("no such inventory session")
	ErrNotOwner        = errors.New("action from a user other than the session owner")
	ErrStale           = errors.New("paginator is halted or already at the bound")
)

// View is a render snapshot of a paginator.
type View struct {
	ID             string
	Page           int
	Pages          int
	Text           string
	BackEnabled    bool
	ForwardEnabled bool
	Halted         bool
}

// Paginator is one in-flight browsing session over a fixed item list.
type Paginator struct {
	ID      string
	OwnerID int64

	mu     sync.Mutex
	items  []model.Item
	page   int
	halted bool
}

// Manager owns all active paginators, keyed by session id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Paginator
}

// NewManager creates a paginator manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Paginator)}
}

// Start creates a paginator over the given items, opened at page zero.
func (m *Manager) Start(ownerID int64, items []model.Item) View {
	p := &Paginator{
		ID:      newSessionID(),
		OwnerID: ownerID,
		items:   items,
	}

	m.mu.Lock()
	m.sessions[p.ID] = p
	m.mu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view()
}

// Back moves one page toward zero. Clicks at page zero or on a halted
// paginator are inert.
func (m *Manager) Back(id string, actorID int64) (View, error) {
	return m.move(id, actorID, -1)
}

// Forward moves one page toward the last page. Clicks at the last page or
// on a halted paginator are inert.
func (m *Manager) Forward(id string, actorID int64) (View, error) {
	return m.move(id, actorID, +1)
}

func (m *Manager) move(id string, actorID int64, delta int) (View, error) {
	p, ok := m.get(id)
	if !ok {
		return View{}, ErrSessionNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if actorID != p.OwnerID {
		return View{}, ErrNotOwner
	}
	if p.halted {
		return View{}, ErrStale
	}

	next := p.page + delta
	if next < 0 || next > lastPage(len(p.items)) {
		return View{}, ErrStale
	}
	p.page = next
	return p.view(), nil
}

// Halt freezes all controls. Idempotent: halting a halted paginator returns
// the same terminal view.
func (m *Manager) Halt(id string, actorID int64) (View, error) {
	p, ok := m.get(id)
	if !ok {
		return View{}, ErrSessionNotFound
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if actorID != p.OwnerID {
		return View{}, ErrNotOwner
	}
	p.halted = true
	return p.view(), nil
}

// Expire freezes the paginator after the inactivity timeout, same effect as
// Halt. Returns the final view and true if this call performed the
// transition.
func (m *Manager) Expire(id string) (View, bool) {
	p, ok := m.get(id)
	if !ok {
		return View{}, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.halted {
		return View{}, false
	}
	p.halted = true
	return p.view(), true
}

// Remove discards a paginator once its final render has been delivered.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) get(id string) (*Paginator, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.sessions[id]
	return p, ok
}

// view builds a snapshot; the caller must hold p.mu.
func (p *Paginator) view() View {
	last := lastPage(len(p.items))
	return View{
		ID:             p.ID,
		Page:           p.page,
		Pages:          last + 1,
		Text:           PageText(p.items, p.page),
		BackEnabled:    !p.halted && p.page > 0,
		ForwardEnabled: !p.halted && p.page < last,
		Halted:         p.halted,
	}
}

// PageText renders one page: the window [page*10, min(page*10+10, len)) as
// a numbered list using the catalog display names.
func PageText(items []model.Item, page int) string {
	start := page * PageSize
	if start < 0 || start >= len(items) {
		return ""
	}
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}

	var b strings.Builder
	for i, it := range items[start:end] {
		fmt.Fprintf(&b, "%d. `%s %s`\n",
			start+i+1,
			reward.Rating(it.Rating),
			reward.ItemType(it.ItemType),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

// lastPage is the zero-based index of the final page.
func lastPage(n int) int {
	if n <= PageSize {
		return 0
	}
	return (n - 1) / PageSize
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
