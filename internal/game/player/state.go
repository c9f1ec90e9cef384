// Package player holds the single mutable record of one player's progress.
// A State is exclusively owned by one play session; the engine mutates it
// only through a staged working copy so a failed action leaves it untouched.
package player

import (
	"fmt"
	"sort"

	"github.com/fable-engine/fable/internal/game/entity"
)

// InsufficientItemsError reports an inventory shortage.
type InsufficientItemsError struct {
	Item entity.ItemID
	Need int
	Have int
}

func (e *InsufficientItemsError) Error() string {
	return fmt.Sprintf("insufficient items: need %d of item %d, have %d", e.Need, e.Item, e.Have)
}

// InsufficientFundsError reports a currency shortage.
type InsufficientFundsError struct {
	Currency entity.CurrencyID
	Need     int
	Have     int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %d of currency %d, have %d", e.Need, e.Currency, e.Have)
}

// SkillProgress tracks one skill's level and XP toward the next level.
type SkillProgress struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// State is a player's complete mutable progress. Fields are exported for
// JSON snapshot persistence; gameplay code mutates them through the methods
// below so the non-negativity invariants hold.
type State struct {
	Name      string                             `json:"name"`
	RoomID    entity.RoomID                      `json:"room_id"`
	Inventory map[entity.ItemID]int              `json:"inventory"`
	Balances  map[entity.CurrencyID]int          `json:"balances"`
	Skills    map[entity.SkillID]*SkillProgress  `json:"skills"`
	Tags      map[string]bool                    `json:"tags"`
	DialogPos map[entity.DialogID]int            `json:"dialog_pos"`
	// Hidden marks actions permanently removed from availability for this
	// player, keyed by room then action index.
	Hidden map[entity.RoomID]map[int]bool `json:"hidden"`
	// Used marks actions this player has successfully executed at least once.
	Used    map[entity.RoomID]map[int]bool `json:"used"`
	Visited map[entity.RoomID]bool         `json:"visited"`
}

// NewState creates a fresh State positioned in startRoom.
//
// Postcondition: all maps are initialised and empty.
func NewState(name string, startRoom entity.RoomID) *State {
	return &State{
		Name:      name,
		RoomID:    startRoom,
		Inventory: make(map[entity.ItemID]int),
		Balances:  make(map[entity.CurrencyID]int),
		Skills:    make(map[entity.SkillID]*SkillProgress),
		Tags:      make(map[string]bool),
		DialogPos: make(map[entity.DialogID]int),
		Hidden:    make(map[entity.RoomID]map[int]bool),
		Used:      make(map[entity.RoomID]map[int]bool),
		Visited:   make(map[entity.RoomID]bool),
	}
}

// ItemCount returns the quantity of item held.
//
// Postcondition: result >= 0.
func (s *State) ItemCount(item entity.ItemID) int {
	return s.Inventory[item]
}

// AddItem increments the held quantity of item by qty.
//
// Precondition: qty >= 0.
func (s *State) AddItem(item entity.ItemID, qty int) {
	if qty == 0 {
		return
	}
	s.Inventory[item] += qty
}

// RemoveItem decrements the held quantity of item by qty.
//
// Postcondition: quantity never goes negative; on shortage the inventory is
// unchanged and an *InsufficientItemsError is returned.
func (s *State) RemoveItem(item entity.ItemID, qty int) error {
	have := s.Inventory[item]
	if have < qty {
		return &InsufficientItemsError{Item: item, Need: qty, Have: have}
	}
	if have == qty {
		delete(s.Inventory, item)
	} else {
		s.Inventory[item] = have - qty
	}
	return nil
}

// Balance returns the balance of the given currency.
//
// Postcondition: result >= 0.
func (s *State) Balance(cur entity.CurrencyID) int {
	return s.Balances[cur]
}

// Credit increases the balance of cur by amount.
//
// Precondition: amount >= 0.
func (s *State) Credit(cur entity.CurrencyID, amount int) {
	if amount == 0 {
		return
	}
	s.Balances[cur] += amount
}

// Debit decreases the balance of cur by amount.
//
// Postcondition: balance never goes negative; on shortage the balance is
// unchanged and an *InsufficientFundsError is returned.
func (s *State) Debit(cur entity.CurrencyID, amount int) error {
	have := s.Balances[cur]
	if have < amount {
		return &InsufficientFundsError{Currency: cur, Need: amount, Have: have}
	}
	s.Balances[cur] = have - amount
	return nil
}

// HasTag reports whether the player carries tag.
func (s *State) HasTag(tag string) bool {
	return s.Tags[tag]
}

// HasAllTags reports whether the player carries every tag in tags.
//
// Postcondition: true for an empty slice.
func (s *State) HasAllTags(tags []string) bool {
	for _, t := range tags {
		if !s.Tags[t] {
			return false
		}
	}
	return true
}

// AddTag adds tag to the player's tag set.
func (s *State) AddTag(tag string) {
	s.Tags[tag] = true
}

// RemoveTag removes tag from the player's tag set.
func (s *State) RemoveTag(tag string) {
	delete(s.Tags, tag)
}

// SortedTags returns the tag set as a sorted slice for stable display.
func (s *State) SortedTags() []string {
	out := make([]string, 0, len(s.Tags))
	for t := range s.Tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Skill returns the progress record for id, or nil if the skill has not
// been granted to this player.
func (s *State) Skill(id entity.SkillID) *SkillProgress {
	return s.Skills[id]
}

// GrantSkill ensures the player has a progress record for id, creating one
// at the given level with zero XP if absent.
//
// Postcondition: Skill(id) is non-nil.
func (s *State) GrantSkill(id entity.SkillID, level int) *SkillProgress {
	if sp, ok := s.Skills[id]; ok {
		return sp
	}
	sp := &SkillProgress{Level: level}
	s.Skills[id] = sp
	return sp
}

// SkillLevel returns the player's level in the given skill, or 0 if the
// skill has not been granted.
func (s *State) SkillLevel(id entity.SkillID) int {
	if sp, ok := s.Skills[id]; ok {
		return sp.Level
	}
	return 0
}

// HideAction permanently removes the action at (room, idx) from this
// player's availability.
func (s *State) HideAction(room entity.RoomID, idx int) {
	if s.Hidden[room] == nil {
		s.Hidden[room] = make(map[int]bool)
	}
	s.Hidden[room][idx] = true
}

// ActionHidden reports whether the action at (room, idx) was hidden for
// this player.
func (s *State) ActionHidden(room entity.RoomID, idx int) bool {
	return s.Hidden[room][idx]
}

// MarkUsed records a successful execution of the action at (room, idx).
func (s *State) MarkUsed(room entity.RoomID, idx int) {
	if s.Used[room] == nil {
		s.Used[room] = make(map[int]bool)
	}
	s.Used[room][idx] = true
}

// ActionUsed reports whether this player has executed the action at
// (room, idx) at least once.
func (s *State) ActionUsed(room entity.RoomID, idx int) bool {
	return s.Used[room][idx]
}

// VisitRoom records that the player has entered room.
func (s *State) VisitRoom(room entity.RoomID) {
	s.Visited[room] = true
}

// VisitedRoom reports whether the player has entered room before.
func (s *State) VisitedRoom(room entity.RoomID) bool {
	return s.Visited[room]
}
