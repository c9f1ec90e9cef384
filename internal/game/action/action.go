// Package action defines the closed set of player-invocable operations a
// room can contain, and the per-player visibility rule that gates them.
package action

import (
	"github.com/fable-engine/fable/internal/game/entity"
	"github.com/fable-engine/fable/internal/game/event"
	"github.com/fable-engine/fable/internal/game/player"
	"github.com/fable-engine/fable/internal/game/requirement"
)

// Base holds the attributes common to every action variant.
type Base struct {
	// MenuName is the label shown in the room's action menu.
	MenuName string
	// ActivationText is printed when the action executes, before any event
	// output.
	ActivationText string
	// Requirements are AND-combined; all must pass for the action to run.
	Requirements []requirement.Requirement
	// Tags gate visibility: an action carrying tags becomes visible once the
	// player holds every one of them, unless Visible marks it always-shown.
	Tags []string
	// Visible marks the action visible regardless of tags. Defaults to true
	// in the asset schema; tag-gated actions declare visible=false.
	Visible bool
	// RevealAfterUse lists tags added to the player's tag set after a
	// successful execution.
	RevealAfterUse []string
	// HideAfterUse permanently hides the action for the player after a
	// successful execution.
	HideAfterUse bool
}

// Action is one entry in a room's ordered action list. The variant set is
// closed: Exit, Wrapper, Dialog, Shop, ManageInventory.
type Action interface {
	// Base returns the shared attributes.
	Base() *Base
}

// Exit moves the player to another room.
type Exit struct {
	Shared Base
	Target entity.RoomID
}

// Wrapper applies an ordered event chain.
type Wrapper struct {
	Shared Base
	Events []event.Event
}

// Dialog starts or advances a conversation.
type Dialog struct {
	Shared Base
	Dialog entity.DialogID
}

// Shop offers wares for purchase in a default currency.
type Shop struct {
	Shared          Base
	DefaultCurrency entity.CurrencyID
	Wares           []entity.ItemID
}

// ManageInventory shows the player's inventory.
type ManageInventory struct {
	Shared Base
}

// Base implements Action.
func (a *Exit) Base() *Base { return &a.Shared }

// Base implements Action.
func (a *Wrapper) Base() *Base { return &a.Shared }

// Base implements Action.
func (a *Dialog) Base() *Base { return &a.Shared }

// Base implements Action.
func (a *Shop) Base() *Base { return &a.Shared }

// Base implements Action.
func (a *ManageInventory) Base() *Base { return &a.Shared }

// VisibleTo reports whether the action at index idx of room is currently
// visible to the player. Hidden-after-use overrides everything; otherwise an
// always-visible action shows unconditionally and a tag-gated one shows once
// the player carries every gate tag.
func VisibleTo(a Action, st *player.State, room entity.RoomID, idx int) bool {
	if st.ActionHidden(room, idx) {
		return false
	}
	b := a.Base()
	if b.Visible {
		return true
	}
	return len(b.Tags) > 0 && st.HasAllTags(b.Tags)
}
