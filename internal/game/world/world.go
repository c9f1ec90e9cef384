// Package world provides the navigable room graph: an arena of rooms
// indexed by ID, with load-time validation of every exit target.
package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fable-engine/fable/internal/game/action"
	"github.com/fable-engine/fable/internal/game/entity"
	"github.com/fable-engine/fable/internal/game/player"
	"github.com/fable-engine/fable/internal/game/requirement"
)

// ErrUnknownRoom is returned when a room lookup yields no result.
var ErrUnknownRoom = errors.New("unknown room")

// Room is a navigable location holding an ordered list of actions. The
// order is significant: it is the presentation order to the player.
// Rooms are immutable after load; per-player visibility lives in
// player.State.
type Room struct {
	ID   entity.RoomID
	Name string
	// EnterText is printed each time the player enters the room.
	EnterText string
	// FirstEnterText is printed only on the player's first visit, before
	// EnterText.
	FirstEnterText string
	// Actions is the room's full ordered action list, default actions
	// already appended by the loader.
	Actions []action.Action
}

// Manager provides O(1) access to the loaded room graph. It is read-only
// after construction and safe to share across concurrent sessions.
type Manager struct {
	rooms     map[entity.RoomID]*Room
	startRoom entity.RoomID
}

// NewManager creates a Manager from the given rooms.
//
// Precondition: rooms must be non-empty; startRoom must be one of them.
// Postcondition: Returns a Manager with all rooms indexed by ID, or an
// error on duplicate IDs or a dangling start room.
func NewManager(rooms []*Room, startRoom entity.RoomID) (*Manager, error) {
	if len(rooms) == 0 {
		return nil, errors.New("world: at least one room is required")
	}

	m := &Manager{rooms: make(map[entity.RoomID]*Room, len(rooms)), startRoom: startRoom}
	for _, r := range rooms {
		if _, exists := m.rooms[r.ID]; exists {
			return nil, fmt.Errorf("world: duplicate room ID %d", r.ID)
		}
		m.rooms[r.ID] = r
	}

	if _, ok := m.rooms[startRoom]; !ok {
		return nil, fmt.Errorf("world: start room %d does not exist", startRoom)
	}
	return m, nil
}

// ValidateExits checks that every exit action in every room targets a known
// room. Call this after NewManager to catch dangling references before any
// session starts.
//
// Postcondition: Returns nil iff every exit target resolves.
func (m *Manager) ValidateExits() error {
	for _, room := range m.rooms {
		for i, a := range room.Actions {
			exit, ok := a.(*action.Exit)
			if !ok {
				continue
			}
			if _, found := m.rooms[exit.Target]; !found {
				return fmt.Errorf("world: room %d: action %d targets unknown room %d", room.ID, i, exit.Target)
			}
		}
	}
	return nil
}

// RoomByID returns the room with the given ID.
//
// Postcondition: Returns ErrUnknownRoom (wrapped) if absent.
func (m *Manager) RoomByID(id entity.RoomID) (*Room, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", id, ErrUnknownRoom)
	}
	return r, nil
}

// StartRoom returns the ID of the room new players begin in.
func (m *Manager) StartRoom() entity.RoomID {
	return m.startRoom
}

// AllRooms returns all rooms sorted by ID.
//
// Postcondition: len(result) == number of loaded rooms.
func (m *Manager) AllRooms() []*Room {
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsValidTransition reports whether the player could currently move from
// room `from` to room `to`: some exit action on `from` targets `to`, is
// visible to the player, and has its requirements satisfied. Movement
// itself happens only through the engine executing that exit action.
func (m *Manager) IsValidTransition(from, to entity.RoomID, st *player.State) bool {
	room, ok := m.rooms[from]
	if !ok {
		return false
	}
	for i, a := range room.Actions {
		exit, isExit := a.(*action.Exit)
		if !isExit || exit.Target != to {
			continue
		}
		if !action.VisibleTo(a, st, from, i) {
			continue
		}
		if _, pass := requirement.Evaluate(a.Base().Requirements, st); pass {
			return true
		}
	}
	return false
}
