package event

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fable-engine/fable/internal/game/combat"
	"github.com/fable-engine/fable/internal/game/entity"
	"github.com/fable-engine/fable/internal/game/player"
)

// Outcome is the terminal disposition of an event chain.
type Outcome string

const (
	// OutcomeSuccess means every event in the chain applied.
	OutcomeSuccess Outcome = "success"
	// OutcomeVictory means the chain included a combat encounter the allies won.
	OutcomeVictory Outcome = "victory"
	// OutcomeDefeat means a combat encounter ended in defeat; later events in
	// the chain did not apply, but state changes before the encounter stand.
	OutcomeDefeat Outcome = "defeat"
	// OutcomeFlee means a combat encounter ended with the allies withdrawing.
	OutcomeFlee Outcome = "flee"
)

// Context carries the staged player state through one event chain and
// accumulates the chain's output.
type Context struct {
	// State is the working copy the chain mutates. The engine commits it
	// only if Run returns nil.
	State *player.State
	// SelectedRecipe is the caller's crafting choice, if any.
	SelectedRecipe *entity.RecipeID

	// Text collects narration lines in application order.
	Text []string
	// Delta collects the structured state changes.
	Delta Delta
	// Outcome is OutcomeSuccess unless a combat encounter ended otherwise.
	Outcome Outcome
	// ListingOnly is set when the chain only produced a listing (shop
	// wares, craftable recipes). The engine discards the staged state for
	// such executions instead of committing it.
	ListingOnly bool

	halted bool
}

// NewContext creates a Context for the given staged state.
func NewContext(st *player.State) *Context {
	return &Context{State: st, Outcome: OutcomeSuccess}
}

// Say appends a narration line.
func (c *Context) Say(format string, args ...any) {
	c.Text = append(c.Text, fmt.Sprintf(format, args...))
}

// Processor applies events to player state. It holds only read-only
// collaborators and may be shared across sessions.
type Processor struct {
	reg      *entity.Registry
	resolver *combat.Resolver
	log      *zap.Logger
}

// NewProcessor creates a Processor.
//
// Precondition: reg and resolver must be non-nil; log may be zap.NewNop().
func NewProcessor(reg *entity.Registry, resolver *combat.Resolver, log *zap.Logger) *Processor {
	return &Processor{reg: reg, resolver: resolver, log: log}
}

// Run applies events in order on ctx. A returned error means some event
// failed and ctx.State must be discarded by the caller. A combat defeat or
// flee is not an error: it halts the chain, sets ctx.Outcome, and keeps the
// state accumulated before the encounter.
func (p *Processor) Run(events []Event, ctx *Context) error {
	for _, ev := range events {
		if ctx.halted {
			break
		}
		if err := p.Apply(ev, ctx); err != nil {
			return err
		}
	}
	return nil
}

// Apply applies a single event to ctx.
func (p *Processor) Apply(ev Event, ctx *Context) error {
	switch e := ev.(type) {
	case *AddItemEvent:
		return p.applyAddItem(e, ctx)
	case *AddCurrencyEvent:
		return p.applyAddCurrency(e, ctx)
	case *TextEvent:
		ctx.Say("%s", e.Text)
		return nil
	case *SkillXPEvent:
		return p.applySkillXP(e, ctx)
	case *DialogEvent:
		return p.applyDialog(e, ctx)
	case *CraftingEvent:
		return p.applyCrafting(e, ctx)
	case *ViewSummaryEvent:
		return p.applySummary(ctx)
	case *CombatEvent:
		return p.applyCombat(e, ctx)
	default:
		return fmt.Errorf("event: unhandled event type %T", ev)
	}
}

func (p *Processor) applyAddItem(e *AddItemEvent, ctx *Context) error {
	item, ok := p.reg.Item(e.Item)
	if !ok {
		return fmt.Errorf("event: add item: unknown item %d", e.Item)
	}

	gained := e.Quantity
	if item.MaxQuantity > 0 {
		room := item.MaxQuantity - ctx.State.ItemCount(e.Item)
		if room < 0 {
			room = 0
		}
		if gained > room {
			gained = room
		}
	}
	if gained > 0 {
		ctx.State.AddItem(e.Item, gained)
		ctx.Delta.AddItem(e.Item, gained)
	}
	ctx.Say("You gain %d x %s.", gained, item.Name)
	return nil
}

func (p *Processor) applyAddCurrency(e *AddCurrencyEvent, ctx *Context) error {
	cur, ok := p.reg.Currency(e.Currency)
	if !ok {
		return fmt.Errorf("event: add currency: unknown currency %d", e.Currency)
	}
	ctx.State.Credit(e.Currency, e.Amount)
	ctx.Delta.AddCurrency(e.Currency, e.Amount)
	ctx.Say("You gain %s.", cur.Format(e.Amount))
	return nil
}

func (p *Processor) applySkillXP(e *SkillXPEvent, ctx *Context) error {
	skill, ok := p.reg.Skill(e.Skill)
	if !ok {
		return fmt.Errorf("event: skill xp: unknown skill %d", e.Skill)
	}

	sp := ctx.State.GrantSkill(e.Skill, skill.InitialLevel)
	sp.XP += e.XP

	levels := 0
	for sp.XP >= skill.XPToAdvance(sp.Level) {
		sp.XP -= skill.XPToAdvance(sp.Level)
		sp.Level++
		levels++
	}

	ctx.Delta.AddSkill(e.Skill, e.XP, sp.Level, levels)
	ctx.Say("You gain %d XP in %s.", e.XP, skill.Name)
	if levels > 0 {
		ctx.Say("%s rises to level %d!", skill.Name, sp.Level)
	}
	return nil
}

func (p *Processor) applyDialog(e *DialogEvent, ctx *Context) error {
	d, ok := p.reg.Dialog(e.Dialog)
	if !ok {
		return fmt.Errorf("event: dialog: unknown dialog %d", e.Dialog)
	}

	pos := ctx.State.DialogPos[e.Dialog]
	node := d.Node(pos)
	if node.Speaker != "" {
		ctx.Say("%s: %s", node.Speaker, node.Text)
	} else {
		ctx.Say("%s", node.Text)
	}
	// The terminal node repeats; earlier nodes advance the cursor.
	if !d.Terminal(pos) {
		ctx.State.DialogPos[e.Dialog] = pos + 1
	}
	return nil
}

func (p *Processor) applySummary(ctx *Context) error {
	snap := ctx.State.Snapshot(p.reg)
	ctx.Say("-- %s --", snap.Name)
	for _, line := range snap.Inventory {
		ctx.Say("%d x %s", line.Quantity, line.Name)
	}
	for _, line := range snap.Balances {
		ctx.Say("%s: %d", line.Name, line.Balance)
	}
	for _, line := range snap.Skills {
		ctx.Say("%s: level %d (%d xp)", line.Name, line.Level, line.XP)
	}
	return nil
}

func (p *Processor) applyCrafting(e *CraftingEvent, ctx *Context) error {
	var chosen *entity.Recipe
	switch {
	case ctx.SelectedRecipe != nil:
		for _, id := range e.Recipes {
			if id == *ctx.SelectedRecipe {
				rc, ok := p.reg.Recipe(id)
				if !ok {
					return fmt.Errorf("event: crafting: unknown recipe %d", id)
				}
				chosen = rc
			}
		}
		if chosen == nil {
			return fmt.Errorf("event: crafting: recipe %d is not offered here", *ctx.SelectedRecipe)
		}
	case len(e.Recipes) == 1:
		rc, ok := p.reg.Recipe(e.Recipes[0])
		if !ok {
			return fmt.Errorf("event: crafting: unknown recipe %d", e.Recipes[0])
		}
		chosen = rc
	}

	if chosen == nil {
		// Browse mode: list the currently craftable subset, touch nothing.
		ctx.ListingOnly = true
		ctx.Say("You can craft:")
		for _, id := range e.Recipes {
			rc, ok := p.reg.Recipe(id)
			if !ok {
				return fmt.Errorf("event: crafting: unknown recipe %d", id)
			}
			if p.craftable(rc, ctx.State) {
				ctx.Say("  [%d] %s", rc.ID, rc.Name)
			}
		}
		return nil
	}

	return p.craft(chosen, ctx)
}

// craft re-validates input sufficiency immediately before consuming, then
// consumes inputs and adds outputs.
func (p *Processor) craft(rc *entity.Recipe, ctx *Context) error {
	for _, in := range rc.Inputs {
		if have := ctx.State.ItemCount(in.Item); have < in.Quantity {
			return &player.InsufficientItemsError{Item: in.Item, Need: in.Quantity, Have: have}
		}
	}
	for _, in := range rc.Inputs {
		if err := ctx.State.RemoveItem(in.Item, in.Quantity); err != nil {
			return err
		}
		ctx.Delta.AddItem(in.Item, -in.Quantity)
	}
	for _, out := range rc.Outputs {
		ctx.State.AddItem(out.Item, out.Quantity)
		ctx.Delta.AddItem(out.Item, out.Quantity)
	}
	ctx.Say("You craft %s.", rc.Name)
	return nil
}

func (p *Processor) craftable(rc *entity.Recipe, st *player.State) bool {
	for _, in := range rc.Inputs {
		if st.ItemCount(in.Item) < in.Quantity {
			return false
		}
	}
	return true
}

func (p *Processor) applyCombat(e *CombatEvent, ctx *Context) error {
	allies, err := p.roster(e.Allies)
	if err != nil {
		return fmt.Errorf("event: combat allies: %w", err)
	}
	enemies, err := p.roster(e.Enemies)
	if err != nil {
		return fmt.Errorf("event: combat enemies: %w", err)
	}

	res, err := p.resolver.Resolve(allies, enemies)
	if err != nil {
		return fmt.Errorf("event: combat: %w", err)
	}
	ctx.Text = append(ctx.Text, res.Log...)
	p.log.Debug("combat resolved",
		zap.String("outcome", res.Outcome.String()),
		zap.Int("rounds", res.Rounds))

	switch res.Outcome {
	case combat.Victory:
		ctx.Outcome = OutcomeVictory
		return p.Run(e.OnVictory, ctx)
	case combat.Defeat:
		ctx.Outcome = OutcomeDefeat
	case combat.Flee:
		ctx.Outcome = OutcomeFlee
	}
	// Defeat and flee end the chain; state gathered before the encounter
	// stands, but nothing after it applies.
	ctx.halted = true
	return nil
}

func (p *Processor) roster(ids []entity.CombatantID) ([]*entity.Combatant, error) {
	out := make([]*entity.Combatant, 0, len(ids))
	for _, id := range ids {
		c, ok := p.reg.Combatant(id)
		if !ok {
			return nil, fmt.Errorf("unknown combatant %d", id)
		}
		out = append(out, c)
	}
	return out, nil
}
