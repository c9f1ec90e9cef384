package player

import (
	"sort"

	"github.com/fable-engine/fable/internal/game/entity"
)

// ItemLine is one inventory row in a snapshot.
type ItemLine struct {
	ID       entity.ItemID `json:"id"`
	Name     string        `json:"name"`
	Quantity int           `json:"quantity"`
}

// BalanceLine is one currency row in a snapshot.
type BalanceLine struct {
	ID      entity.CurrencyID `json:"id"`
	Name    string            `json:"name"`
	Balance int               `json:"balance"`
}

// SkillLine is one skill row in a snapshot.
type SkillLine struct {
	ID    entity.SkillID `json:"id"`
	Name  string         `json:"name"`
	Level int            `json:"level"`
	XP    int            `json:"xp"`
}

// Snapshot is a read-only view of player state for display. It is plain
// data: mutating it has no effect on the underlying State.
type Snapshot struct {
	Name      string        `json:"name"`
	RoomID    entity.RoomID `json:"room_id"`
	Inventory []ItemLine    `json:"inventory"`
	Balances  []BalanceLine `json:"balances"`
	Skills    []SkillLine   `json:"skills"`
	Tags      []string      `json:"tags"`
}

// Snapshot produces a display snapshot with names resolved through reg.
// Rows are sorted by ID for stable output. Entries referencing IDs unknown
// to reg keep an empty name rather than failing; the loader guarantees this
// cannot happen for world-sourced state.
func (s *State) Snapshot(reg *entity.Registry) Snapshot {
	snap := Snapshot{
		Name:   s.Name,
		RoomID: s.RoomID,
		Tags:   s.SortedTags(),
	}

	for id, qty := range s.Inventory {
		line := ItemLine{ID: id, Quantity: qty}
		if item, ok := reg.Item(id); ok {
			line.Name = item.Name
		}
		snap.Inventory = append(snap.Inventory, line)
	}
	sort.Slice(snap.Inventory, func(i, j int) bool { return snap.Inventory[i].ID < snap.Inventory[j].ID })

	for id, bal := range s.Balances {
		line := BalanceLine{ID: id, Balance: bal}
		if cur, ok := reg.Currency(id); ok {
			line.Name = cur.Name
		}
		snap.Balances = append(snap.Balances, line)
	}
	sort.Slice(snap.Balances, func(i, j int) bool { return snap.Balances[i].ID < snap.Balances[j].ID })

	for id, sp := range s.Skills {
		line := SkillLine{ID: id, Level: sp.Level, XP: sp.XP}
		if sk, ok := reg.Skill(id); ok {
			line.Name = sk.Name
		}
		snap.Skills = append(snap.Skills, line)
	}
	sort.Slice(snap.Skills, func(i, j int) bool { return snap.Skills[i].ID < snap.Skills[j].ID })

	return snap
}
