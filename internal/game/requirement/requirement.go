// Package requirement implements the pure predicate layer gating actions.
// The variant set is closed: ItemRequirement, ConsumeItemRequirement, and
// SkillRequirement. Unknown variants are rejected by the asset loader, never
// at runtime.
package requirement

import (
	"fmt"

	"github.com/fable-engine/fable/internal/game/entity"
	"github.com/fable-engine/fable/internal/game/player"
)

// Requirement is a side-effect-free precondition over player state.
type Requirement interface {
	// Satisfied reports whether st meets the requirement. It must not
	// mutate st.
	Satisfied(st *player.State) bool
	// Describe renders the requirement for player-facing messages, using
	// reg to resolve entity names.
	Describe(reg *entity.Registry) string
}

// Consumer is implemented by requirements that carry a deferred consumption
// side-effect. The engine commits consumptions only after every requirement
// on the action has passed, so a failed composite check never consumes.
type Consumer interface {
	// Consume applies the deferred consumption to st.
	Consume(st *player.State) error
}

// ItemRequirement passes when the player holds at least Quantity of Item.
type ItemRequirement struct {
	Item     entity.ItemID
	Quantity int
}

// Satisfied reports whether the player holds enough of the item.
func (r *ItemRequirement) Satisfied(st *player.State) bool {
	return st.ItemCount(r.Item) >= r.Quantity
}

// Describe renders the requirement for display.
func (r *ItemRequirement) Describe(reg *entity.Registry) string {
	return fmt.Sprintf("requires %d x %s", r.Quantity, itemName(reg, r.Item))
}

// ConsumeItemRequirement passes under the same condition as ItemRequirement
// but additionally consumes the items when the owning action executes.
type ConsumeItemRequirement struct {
	Item     entity.ItemID
	Quantity int
}

// Satisfied reports whether the player holds enough of the item. The
// consumption itself is deferred; see Consume.
func (r *ConsumeItemRequirement) Satisfied(st *player.State) bool {
	return st.ItemCount(r.Item) >= r.Quantity
}

// Consume removes the required items from st.
//
// Precondition: Satisfied(st) held when the owning action's requirement list
// was evaluated; the engine calls Consume on a staged copy of that state.
func (r *ConsumeItemRequirement) Consume(st *player.State) error {
	return st.RemoveItem(r.Item, r.Quantity)
}

// Describe renders the requirement for display.
func (r *ConsumeItemRequirement) Describe(reg *entity.Registry) string {
	return fmt.Sprintf("consumes %d x %s", r.Quantity, itemName(reg, r.Item))
}

// SkillRequirement passes when the player's level in Skill is at least Level.
type SkillRequirement struct {
	Skill entity.SkillID
	Level int
}

// Satisfied reports whether the player's skill level meets the threshold.
func (r *SkillRequirement) Satisfied(st *player.State) bool {
	return st.SkillLevel(r.Skill) >= r.Level
}

// Describe renders the requirement for display.
func (r *SkillRequirement) Describe(reg *entity.Registry) string {
	name := fmt.Sprintf("skill %d", r.Skill)
	if sk, ok := reg.Skill(r.Skill); ok {
		name = sk.Name
	}
	return fmt.Sprintf("requires %s level %d", name, r.Level)
}

// Evaluate checks every requirement in reqs against st, in order.
//
// Postcondition: returns (nil, true) iff every requirement passes (an empty
// list always passes); otherwise returns the first failing requirement.
// st is never mutated.
func Evaluate(reqs []Requirement, st *player.State) (Requirement, bool) {
	for _, r := range reqs {
		if !r.Satisfied(st) {
			return r, false
		}
	}
	return nil, true
}

// CommitConsumptions applies the deferred consumption of every Consumer in
// reqs to st.
//
// Precondition: Evaluate(reqs, st) passed on this same state.
func CommitConsumptions(reqs []Requirement, st *player.State) error {
	for _, r := range reqs {
		c, ok := r.(Consumer)
		if !ok {
			continue
		}
		if err := c.Consume(st); err != nil {
			return fmt.Errorf("committing consumption: %w", err)
		}
	}
	return nil
}

func itemName(reg *entity.Registry, id entity.ItemID) string {
	if item, ok := reg.Item(id); ok {
		return item.Name
	}
	return fmt.Sprintf("item %d", id)
}
