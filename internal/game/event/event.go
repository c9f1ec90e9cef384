// Package event defines the closed set of state-mutating effects an action
// can produce, and the Processor that applies them. A wrapped event list is
// applied strictly in order; the engine stages the whole chain on a working
// copy of player state and commits only when no event fails.
package event

import "github.com/fable-engine/fable/internal/game/entity"

// Event is the unit of state mutation. The variant set is closed; the asset
// loader rejects unknown discriminators, so the Processor's type switch is
// exhaustive.
type Event interface {
	event()
}

// AddItemEvent credits the player with a quantity of an item. Always
// succeeds; quantities above the item's MaxQuantity cap are clamped.
type AddItemEvent struct {
	Item     entity.ItemID
	Quantity int
}

// AddCurrencyEvent credits the player with currency. Always succeeds.
type AddCurrencyEvent struct {
	Currency entity.CurrencyID
	Amount   int
}

// TextEvent emits narration without touching state. Always succeeds.
type TextEvent struct {
	Text string
}

// SkillXPEvent grants XP in a skill, levelling up whenever the cumulative
// XP crosses the skill's curve threshold. Always succeeds.
type SkillXPEvent struct {
	Skill entity.SkillID
	XP    int
}

// DialogEvent advances the player one node through a dialog and returns the
// node's text. The terminal node is idempotent.
type DialogEvent struct {
	Dialog entity.DialogID
}

// CraftingEvent offers the listed recipes. With a selected recipe (or when
// exactly one recipe is listed) it re-validates the inputs, consumes them,
// and adds the outputs; insufficient inputs fail the event and abort the
// chain. Without a selection it reports which recipes are currently
// craftable, mutating nothing.
type CraftingEvent struct {
	Recipes []entity.RecipeID
}

// ViewSummaryEvent produces a read-only snapshot of the player's state.
type ViewSummaryEvent struct{}

// CombatEvent resolves an encounter between the ally and enemy rosters.
// Victory applies the OnVictory sub-events; defeat and flee halt the chain
// with a distinct outcome without failing the action.
type CombatEvent struct {
	Allies    []entity.CombatantID
	Enemies   []entity.CombatantID
	OnVictory []Event
}

func (*AddItemEvent) event()     {}
func (*AddCurrencyEvent) event() {}
func (*TextEvent) event()        {}
func (*SkillXPEvent) event()     {}
func (*DialogEvent) event()      {}
func (*CraftingEvent) event()    {}
func (*ViewSummaryEvent) event() {}
func (*CombatEvent) event()      {}
