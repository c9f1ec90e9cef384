package event

import "github.com/fable-engine/fable/internal/game/entity"

// ItemDelta records a net inventory change.
type ItemDelta struct {
	Item   entity.ItemID `json:"item"`
	Change int           `json:"change"`
}

// CurrencyDelta records a net balance change.
type CurrencyDelta struct {
	Currency entity.CurrencyID `json:"currency"`
	Change   int               `json:"change"`
}

// SkillDelta records XP gained and any level-ups in one skill.
type SkillDelta struct {
	Skill        entity.SkillID `json:"skill"`
	XPGained     int            `json:"xp_gained"`
	NewLevel     int            `json:"new_level"`
	LevelsGained int            `json:"levels_gained"`
}

// RoomChange records a movement between rooms.
type RoomChange struct {
	From entity.RoomID `json:"from"`
	To   entity.RoomID `json:"to"`
}

// Delta is the structured record of everything an action execution changed.
// It is plain data for the caller to render; replaying it is not supported.
type Delta struct {
	Items      []ItemDelta     `json:"items,omitempty"`
	Currencies []CurrencyDelta `json:"currencies,omitempty"`
	Skills     []SkillDelta    `json:"skills,omitempty"`
	TagsAdded  []string        `json:"tags_added,omitempty"`
	Room       *RoomChange     `json:"room,omitempty"`
}

// AddItem accumulates an inventory change, merging with an existing entry
// for the same item.
func (d *Delta) AddItem(item entity.ItemID, change int) {
	for i := range d.Items {
		if d.Items[i].Item == item {
			d.Items[i].Change += change
			return
		}
	}
	d.Items = append(d.Items, ItemDelta{Item: item, Change: change})
}

// AddCurrency accumulates a balance change, merging with an existing entry
// for the same currency.
func (d *Delta) AddCurrency(cur entity.CurrencyID, change int) {
	for i := range d.Currencies {
		if d.Currencies[i].Currency == cur {
			d.Currencies[i].Change += change
			return
		}
	}
	d.Currencies = append(d.Currencies, CurrencyDelta{Currency: cur, Change: change})
}

// AddSkill accumulates a skill change, merging with an existing entry for
// the same skill.
func (d *Delta) AddSkill(skill entity.SkillID, xp, newLevel, levels int) {
	for i := range d.Skills {
		if d.Skills[i].Skill == skill {
			d.Skills[i].XPGained += xp
			d.Skills[i].NewLevel = newLevel
			d.Skills[i].LevelsGained += levels
			return
		}
	}
	d.Skills = append(d.Skills, SkillDelta{Skill: skill, XPGained: xp, NewLevel: newLevel, LevelsGained: levels})
}
