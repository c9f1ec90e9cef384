// Package entity holds the immutable definitions that make up a game's
// content: items, skills, currencies, dialogs, crafting recipes, and
// combatants. Definitions are loaded once at startup, registered in a
// Registry, and never mutated during play.
package entity

// Typed identifiers for cross-references between definitions. Asset
// documents reference entities by these integer IDs; all references are
// validated at load time so runtime lookups cannot dangle.
type (
	// ItemID identifies an Item definition.
	ItemID int
	// SkillID identifies a Skill definition.
	SkillID int
	// CurrencyID identifies a Currency definition.
	CurrencyID int
	// DialogID identifies a Dialog definition.
	DialogID int
	// RecipeID identifies a Recipe definition.
	RecipeID int
	// CombatantID identifies a Combatant definition.
	CombatantID int
	// RoomID identifies a room in the world.
	RoomID int
)

// Stack pairs an item with a quantity. Used by recipes and events.
type Stack struct {
	Item     ItemID
	Quantity int
}
