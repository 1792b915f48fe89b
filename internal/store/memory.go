// internal/store/memory.go
//
// In-memory session store: the shared map from session code to the one
// Session handle for that game, plus the per-session mutation boundary.
//
// Characteristics:
//   - Codes are compared case-insensitively (lowercased on the way in).
//   - The map itself is guarded by an RWMutex; mutating a game goes through
//     Session.Update, which serializes all intents and timer callbacks for
//     that session while leaving other sessions fully parallel.
//   - State is lost when the process restarts.

package store

import (
	"strings"
	"sync"

	"github.com/alexdriaguine/drawly/internal/game"
)

// Session is the handle for one game: the aggregate plus its mutex. The
// lock is held only for the duration of a single Update closure, never
// across timer waits or network writes.
type Session struct {
	mu sync.Mutex
	g  *game.Game
}

// Update runs fn with exclusive access to the game. Whatever fn returns is
// passed through.
func (s *Session) Update(fn func(*game.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.g)
}

// Store maps session codes to live sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new game under its code. The code must be unused.
func (st *Store) Create(g *game.Game) (*Session, error) {
	key := strings.ToLower(g.ID)
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.sessions[key]; exists {
		return nil, game.InvalidInputf("game code %s is taken", key)
	}
	s := &Session{g: g}
	st.sessions[key] = s
	return s, nil
}

// Get looks up a session by code.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if s, ok := st.sessions[strings.ToLower(id)]; ok {
		return s, nil
	}
	return nil, game.NotFoundf("game %s not found", id)
}

// Remove drops a session. Removing an unknown code is a no-op.
func (st *Store) Remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, strings.ToLower(id))
}

// Len reports how many sessions are live.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Each calls fn for every live session. The store lock is not held during
// fn, so fn may call Update; the snapshot may be slightly stale by then.
func (st *Store) Each(fn func(*Session)) {
	st.mu.RLock()
	snapshot := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		snapshot = append(snapshot, s)
	}
	st.mu.RUnlock()
	for _, s := range snapshot {
		fn(s)
	}
}
