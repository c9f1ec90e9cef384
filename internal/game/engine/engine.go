// Package engine is the action resolution core: it answers which actions a
// player can currently take and executes a chosen one, routing requirement
// checks, deferred consumptions, the event chain, and the reveal/hide
// visibility transitions. Execute is the atomicity boundary: a failed
// execution leaves player state exactly as it was.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fable-engine/fable/internal/game/action"
	"github.com/fable-engine/fable/internal/game/entity"
	"github.com/fable-engine/fable/internal/game/event"
	"github.com/fable-engine/fable/internal/game/player"
	"github.com/fable-engine/fable/internal/game/requirement"
	"github.com/fable-engine/fable/internal/game/world"
)

// ErrActionNotFound is returned when the requested action is absent from
// the currently available set.
var ErrActionNotFound = errors.New("action not found")

// RequirementsNotMetError identifies the specific requirement that blocked
// an action.
type RequirementsNotMetError struct {
	Failed  requirement.Requirement
	Message string
}

func (e *RequirementsNotMetError) Error() string {
	return "requirements not met: " + e.Message
}

// Choice carries the optional selection some actions need: the ware to buy
// from a shop, or the recipe to craft.
type Choice struct {
	Ware   *entity.ItemID
	Recipe *entity.RecipeID
}

// ActionView is one row of the availability query.
type ActionView struct {
	// ID is the action's stable identifier within its room (its index in
	// the room's full action list).
	ID   int    `json:"id"`
	Name string `json:"name"`
	// Used reports whether this player has executed the action before.
	Used bool `json:"used"`
}

// Result is the outcome of a successful execution.
type Result struct {
	Text    []string      `json:"text"`
	Delta   event.Delta   `json:"delta"`
	Outcome event.Outcome `json:"outcome"`
}

// Engine dispatches actions for any number of sessions. It holds only
// read-only collaborators; all mutable state lives in the per-session
// player.State passed to each call.
type Engine struct {
	world *world.Manager
	reg   *entity.Registry
	proc  *event.Processor
	log   *zap.Logger
}

// New creates an Engine.
//
// Precondition: w, reg, and proc must be non-nil; log may be zap.NewNop().
func New(w *world.Manager, reg *entity.Registry, proc *event.Processor, log *zap.Logger) *Engine {
	return &Engine{world: w, reg: reg, proc: proc, log: log}
}

// World returns the engine's room graph.
func (e *Engine) World() *world.Manager { return e.world }

// Registry returns the engine's entity registry.
func (e *Engine) Registry() *entity.Registry { return e.reg }

// AvailableActions returns the ordered list of actions currently visible to
// the player in the given room. Ordering matches the room definition.
//
// Postcondition: hidden actions are never included; the result is
// deterministic for an unchanged state.
func (e *Engine) AvailableActions(st *player.State, roomID entity.RoomID) ([]ActionView, error) {
	room, err := e.world.RoomByID(roomID)
	if err != nil {
		return nil, err
	}

	var out []ActionView
	for i, a := range room.Actions {
		if !action.VisibleTo(a, st, roomID, i) {
			continue
		}
		out = append(out, ActionView{
			ID:   i,
			Name: a.Base().MenuName,
			Used: st.ActionUsed(roomID, i),
		})
	}
	return out, nil
}

// Execute runs the action with the given ID in the given room on behalf of
// the player. On any failure the returned state is untouched; on success
// the staged changes are committed and the visibility directives applied.
// Browsing a shop or a recipe list without a Choice is read-only: it
// returns the listing and commits nothing.
func (e *Engine) Execute(st *player.State, roomID entity.RoomID, actionID int, choice Choice) (Result, error) {
	room, err := e.world.RoomByID(roomID)
	if err != nil {
		return Result{}, err
	}

	if actionID < 0 || actionID >= len(room.Actions) {
		return Result{}, fmt.Errorf("room %d action %d: %w", roomID, actionID, ErrActionNotFound)
	}
	act := room.Actions[actionID]
	if !action.VisibleTo(act, st, roomID, actionID) {
		return Result{}, fmt.Errorf("room %d action %d: %w", roomID, actionID, ErrActionNotFound)
	}

	reqs := act.Base().Requirements
	if failed, ok := requirement.Evaluate(reqs, st); !ok {
		return Result{}, &RequirementsNotMetError{
			Failed:  failed,
			Message: failed.Describe(e.reg),
		}
	}

	// Stage everything on a working copy; st is only touched on success.
	staged := st.Clone()
	if err := requirement.CommitConsumptions(reqs, staged); err != nil {
		return Result{}, err
	}

	ctx := event.NewContext(staged)
	ctx.SelectedRecipe = choice.Recipe
	if txt := act.Base().ActivationText; txt != "" {
		ctx.Say("%s", txt)
	}

	if err := e.perform(act, roomID, ctx, choice); err != nil {
		return Result{}, err
	}

	// A no-choice browse only produced a listing. Discard the staged copy,
	// deferred consumptions included, and leave the directives unfired.
	if ctx.ListingOnly {
		return Result{Text: ctx.Text, Delta: ctx.Delta, Outcome: ctx.Outcome}, nil
	}

	// Reveal/hide directives fire on success; a combat defeat or flee keeps
	// the pre-encounter state but suppresses the directives.
	if ctx.Outcome == event.OutcomeSuccess || ctx.Outcome == event.OutcomeVictory {
		for _, tag := range act.Base().RevealAfterUse {
			if !staged.HasTag(tag) {
				staged.AddTag(tag)
				ctx.Delta.TagsAdded = append(ctx.Delta.TagsAdded, tag)
			}
		}
		if act.Base().HideAfterUse {
			staged.HideAction(roomID, actionID)
		}
		staged.MarkUsed(roomID, actionID)
	}

	st.ReplaceWith(staged)
	e.log.Debug("action executed",
		zap.String("player", st.Name),
		zap.Int("room", int(roomID)),
		zap.Int("action", actionID),
		zap.String("outcome", string(ctx.Outcome)))

	return Result{Text: ctx.Text, Delta: ctx.Delta, Outcome: ctx.Outcome}, nil
}

// perform applies the variant-specific behaviour on the staged context.
func (e *Engine) perform(act action.Action, roomID entity.RoomID, ctx *event.Context, choice Choice) error {
	switch a := act.(type) {
	case *action.Exit:
		return e.performExit(a, roomID, ctx)
	case *action.Wrapper:
		return e.proc.Run(a.Events, ctx)
	case *action.Dialog:
		return e.proc.Apply(&event.DialogEvent{Dialog: a.Dialog}, ctx)
	case *action.Shop:
		return e.performShop(a, ctx, choice)
	case *action.ManageInventory:
		return e.performInventory(ctx)
	default:
		return fmt.Errorf("engine: unhandled action type %T", act)
	}
}

func (e *Engine) performExit(a *action.Exit, from entity.RoomID, ctx *event.Context) error {
	target, err := e.world.RoomByID(a.Target)
	if err != nil {
		return err
	}

	here, err := e.world.RoomByID(from)
	if err != nil {
		return err
	}
	ctx.Say("You leave %s.", here.Name)

	ctx.State.RoomID = a.Target
	ctx.Delta.Room = &event.RoomChange{From: from, To: a.Target}

	if target.FirstEnterText != "" && !ctx.State.VisitedRoom(a.Target) {
		ctx.Say("%s", target.FirstEnterText)
	}
	if target.EnterText != "" {
		ctx.Say("%s", target.EnterText)
	}
	ctx.State.VisitRoom(a.Target)
	return nil
}

func (e *Engine) performShop(a *action.Shop, ctx *event.Context, choice Choice) error {
	cur, ok := e.reg.Currency(a.DefaultCurrency)
	if !ok {
		return fmt.Errorf("engine: shop: unknown currency %d", a.DefaultCurrency)
	}

	if choice.Ware == nil {
		// Browse mode: list wares with prices, touch nothing.
		ctx.ListingOnly = true
		ctx.Say("For sale (%s):", cur.Name)
		for _, id := range a.Wares {
			item, found := e.reg.Item(id)
			if !found {
				return fmt.Errorf("engine: shop: unknown item %d", id)
			}
			price, priced := item.Price(a.DefaultCurrency)
			if !priced {
				continue
			}
			ctx.Say("  [%d] %s - %s", item.ID, item.Name, cur.Format(price))
		}
		return nil
	}

	// Purchase: debit then credit on the staged state, so a shortage leaves
	// both currency and inventory unchanged.
	var ware *entity.Item
	for _, id := range a.Wares {
		if id == *choice.Ware {
			item, found := e.reg.Item(id)
			if !found {
				return fmt.Errorf("engine: shop: unknown item %d", id)
			}
			ware = item
		}
	}
	if ware == nil {
		return fmt.Errorf("engine: shop: item %d is not for sale here", *choice.Ware)
	}

	price, priced := ware.Price(a.DefaultCurrency)
	if !priced {
		return fmt.Errorf("engine: shop: item %d has no price in currency %d", ware.ID, a.DefaultCurrency)
	}
	if err := ctx.State.Debit(a.DefaultCurrency, price); err != nil {
		return err
	}
	ctx.State.AddItem(ware.ID, 1)
	ctx.Delta.AddCurrency(a.DefaultCurrency, -price)
	ctx.Delta.AddItem(ware.ID, 1)
	ctx.Say("You buy %s for %s.", ware.Name, cur.Format(price))
	return nil
}

func (e *Engine) performInventory(ctx *event.Context) error {
	snap := ctx.State.Snapshot(e.reg)
	if len(snap.Inventory) == 0 {
		ctx.Say("Your pack is empty.")
		return nil
	}
	ctx.Say("You are carrying:")
	for _, line := range snap.Inventory {
		ctx.Say("  %d x %s", line.Quantity, line.Name)
	}
	return nil
}
