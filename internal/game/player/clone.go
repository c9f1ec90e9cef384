package player

import "github.com/fable-engine/fable/internal/game/entity"

// Clone returns a deep copy of the state. The engine stages every action's
// mutations on a clone and commits only on full success.
//
// Postcondition: the clone shares no mutable memory with s.
func (s *State) Clone() *State {
	c := &State{
		Name:      s.Name,
		RoomID:    s.RoomID,
		Inventory: make(map[entity.ItemID]int, len(s.Inventory)),
		Balances:  make(map[entity.CurrencyID]int, len(s.Balances)),
		Skills:    make(map[entity.SkillID]*SkillProgress, len(s.Skills)),
		Tags:      make(map[string]bool, len(s.Tags)),
		DialogPos: make(map[entity.DialogID]int, len(s.DialogPos)),
		Hidden:    make(map[entity.RoomID]map[int]bool, len(s.Hidden)),
		Used:      make(map[entity.RoomID]map[int]bool, len(s.Used)),
		Visited:   make(map[entity.RoomID]bool, len(s.Visited)),
	}
	for k, v := range s.Inventory {
		c.Inventory[k] = v
	}
	for k, v := range s.Balances {
		c.Balances[k] = v
	}
	for k, v := range s.Skills {
		sp := *v
		c.Skills[k] = &sp
	}
	for k := range s.Tags {
		c.Tags[k] = true
	}
	for k, v := range s.DialogPos {
		c.DialogPos[k] = v
	}
	for room, set := range s.Hidden {
		inner := make(map[int]bool, len(set))
		for idx := range set {
			inner[idx] = true
		}
		c.Hidden[room] = inner
	}
	for room, set := range s.Used {
		inner := make(map[int]bool, len(set))
		for idx := range set {
			inner[idx] = true
		}
		c.Used[room] = inner
	}
	for k := range s.Visited {
		c.Visited[k] = true
	}
	return c
}

// ReplaceWith overwrites s with the contents of other. Used to commit a
// staged clone back into the session-owned state.
//
// Precondition: other must not be nil.
func (s *State) ReplaceWith(other *State) {
	*s = *other
}
