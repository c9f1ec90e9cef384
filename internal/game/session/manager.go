// Package session tracks active play sessions. Each session exclusively
// owns one player.State; the manager serialises execution per session so a
// session either completes an execute call or is discarded whole.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fable-engine/fable/internal/game/engine"
	"github.com/fable-engine/fable/internal/game/entity"
	"github.com/fable-engine/fable/internal/game/player"
)

// ErrSessionNotFound is returned when a session lookup yields no result.
var ErrSessionNotFound = errors.New("session not found")

// Session binds a session ID to its exclusively-owned player state.
type Session struct {
	// ID is the opaque session identifier handed to the transport layer.
	ID string
	// State is the session's player state. Only the owning Manager touches
	// it after creation.
	State     *player.State
	CreatedAt time.Time

	// mu serialises execution within this session. Distinct sessions never
	// contend.
	mu sync.Mutex
}

// Manager creates, looks up, and drives sessions against a shared Engine.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	engine   *engine.Engine
	sessions map[string]*Session
}

// NewManager creates an empty session Manager.
//
// Precondition: eng must be non-nil.
func NewManager(eng *engine.Engine) *Manager {
	return &Manager{engine: eng, sessions: make(map[string]*Session)}
}

// Create starts a new session for the named player at the world's start
// room.
//
// Postcondition: Get(result.ID) returns the session.
func (m *Manager) Create(playerName string) *Session {
	start := m.engine.World().StartRoom()
	st := player.NewState(playerName, start)
	st.VisitRoom(start)

	s := &Session{
		ID:        uuid.NewString(),
		State:     st,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

// Engine returns the shared engine backing all sessions.
func (m *Manager) Engine() *engine.Engine {
	return m.engine
}

// CreateFrom starts a new session owning the given pre-existing state,
// e.g. one loaded from a save slot.
//
// Precondition: st must be non-nil and not shared with another session.
func (m *Manager) CreateFrom(st *player.State) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		State:     st,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

// Restore registers a session with pre-existing state, e.g. from a save
// slot or a snapshot cache.
//
// Postcondition: Returns an error if the ID is already registered.
func (m *Manager) Restore(id string, st *player.State) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("session %q already active", id)
	}
	s := &Session{ID: id, State: st, CreatedAt: time.Now()}
	m.sessions[id] = s
	return s, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Remove discards the session with the given ID.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	delete(m.sessions, id)
	return nil
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// AvailableActions lists the actions currently visible to the session's
// player in the given room.
func (m *Manager) AvailableActions(sessionID string, roomID entity.RoomID) ([]engine.ActionView, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.engine.AvailableActions(s.State, roomID)
}

// ActionsHere lists the actions visible in the session's current room,
// along with that room's ID.
func (m *Manager) ActionsHere(sessionID string) (entity.RoomID, []engine.ActionView, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return 0, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	views, err := m.engine.AvailableActions(s.State, s.State.RoomID)
	return s.State.RoomID, views, err
}

// ExecuteHere runs one action in the session's current room.
func (m *Manager) ExecuteHere(sessionID string, actionID int, choice engine.Choice) (engine.Result, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return engine.Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.engine.Execute(s.State, s.State.RoomID, actionID, choice)
}

// Execute runs one action for the session. Calls for the same session are
// serialised; the engine guarantees all-or-nothing state changes.
func (m *Manager) Execute(sessionID string, roomID entity.RoomID, actionID int, choice engine.Choice) (engine.Result, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return engine.Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.engine.Execute(s.State, roomID, actionID, choice)
}

// StateCopy returns a deep copy of the session's player state, suitable
// for persisting without holding the session lock.
func (m *Manager) StateCopy(sessionID string) (*player.State, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State.Clone(), nil
}

// Snapshot returns a read-only view of the session's player state.
func (m *Manager) Snapshot(sessionID string) (player.Snapshot, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return player.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State.Snapshot(m.engine.Registry()), nil
}
