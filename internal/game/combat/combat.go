// Package combat resolves bounded encounters between an ally roster and an
// enemy roster. Resolution is seeded-random: the same rosters and the same
// dice source produce the same result.
package combat

import (
	"fmt"
	"sort"

	"github.com/fable-engine/fable/internal/game/dice"
	"github.com/fable-engine/fable/internal/game/entity"
)

// Outcome is the terminal state of an encounter.
type Outcome int

const (
	// Victory means every enemy was defeated.
	Victory Outcome = iota
	// Defeat means every ally was defeated.
	Defeat
	// Flee means the round cap elapsed with both sides standing; the allies
	// withdraw.
	Flee
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	case Flee:
		return "flee"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Side distinguishes the two rosters.
type Side int

const (
	// SideAlly is the player's side.
	SideAlly Side = iota
	// SideEnemy is the opposing side.
	SideEnemy
)

// Fighter is the live state of one combatant during an encounter.
type Fighter struct {
	Def        *entity.Combatant
	Side       Side
	CurrentHP  int
	initiative int
}

// Alive reports whether the fighter can still act.
func (f *Fighter) Alive() bool {
	return f.CurrentHP > 0
}

// Result describes a finished encounter.
type Result struct {
	Outcome Outcome
	Rounds  int
	// Log is the turn-by-turn narration, one line per attack or round marker.
	Log []string
}

// DefaultRoundCap bounds an encounter when neither side can finish the other.
const DefaultRoundCap = 20

// Resolver runs encounters. It is safe to share across sessions as long as
// the dice source is.
type Resolver struct {
	src      dice.Source
	roundCap int
}

// NewResolver creates a Resolver using src for all rolls.
//
// Precondition: src must be non-nil. roundCap <= 0 selects DefaultRoundCap.
func NewResolver(src dice.Source, roundCap int) *Resolver {
	if roundCap <= 0 {
		roundCap = DefaultRoundCap
	}
	return &Resolver{src: src, roundCap: roundCap}
}

// Resolve runs a full encounter between allies and enemies.
//
// Precondition: both rosters must be non-empty; every Combatant must have
// passed registry validation (in particular, Damage parses).
// Postcondition: exactly one of Victory, Defeat, or Flee; the input
// definitions are never mutated.
func (r *Resolver) Resolve(allies, enemies []*entity.Combatant) (Result, error) {
	if len(allies) == 0 || len(enemies) == 0 {
		return Result{}, fmt.Errorf("combat: both rosters must be non-empty (allies=%d, enemies=%d)", len(allies), len(enemies))
	}

	fighters := make([]*Fighter, 0, len(allies)+len(enemies))
	for _, def := range allies {
		fighters = append(fighters, &Fighter{Def: def, Side: SideAlly, CurrentHP: def.MaxHP})
	}
	for _, def := range enemies {
		fighters = append(fighters, &Fighter{Def: def, Side: SideEnemy, CurrentHP: def.MaxHP})
	}

	rollInitiative(fighters, r.src)

	res := Result{}
	for round := 1; round <= r.roundCap; round++ {
		res.Rounds = round
		res.Log = append(res.Log, fmt.Sprintf("-- round %d --", round))

		for _, f := range fighters {
			if !f.Alive() {
				continue
			}
			target := firstLiving(fighters, opposing(f.Side))
			if target == nil {
				break
			}
			line, err := r.attack(f, target)
			if err != nil {
				return Result{}, err
			}
			res.Log = append(res.Log, line)

			if done, outcome := encounterOver(fighters); done {
				res.Outcome = outcome
				res.Log = append(res.Log, fmt.Sprintf("the encounter ends in %s", outcome))
				return res, nil
			}
		}
	}

	res.Outcome = Flee
	res.Log = append(res.Log, fmt.Sprintf("after %d rounds neither side prevails; the party withdraws", r.roundCap))
	return res, nil
}

// attack resolves one attack of f against target, applying damage in place.
func (r *Resolver) attack(f, target *Fighter) (string, error) {
	roll := r.src.Intn(20) + 1
	total := roll + f.Def.Attack
	if total < target.Def.Defense {
		return fmt.Sprintf("%s attacks %s and misses (%d vs %d)", f.Def.Name, target.Def.Name, total, target.Def.Defense), nil
	}

	dmg, err := dice.RollExpr(f.Def.Damage, r.src)
	if err != nil {
		return "", fmt.Errorf("combat: rolling damage for %q: %w", f.Def.Name, err)
	}
	amount := dmg.Total()
	if amount < 1 {
		amount = 1
	}
	target.CurrentHP -= amount
	if target.CurrentHP < 0 {
		target.CurrentHP = 0
	}

	if !target.Alive() {
		return fmt.Sprintf("%s hits %s for %d and brings them down", f.Def.Name, target.Def.Name, amount), nil
	}
	return fmt.Sprintf("%s hits %s for %d (%d hp left)", f.Def.Name, target.Def.Name, amount, target.CurrentHP), nil
}

// rollInitiative orders fighters by d20+Speed descending, breaking ties by
// Speed then name for a stable order.
func rollInitiative(fighters []*Fighter, src dice.Source) {
	for _, f := range fighters {
		f.initiative = src.Intn(20) + 1 + f.Def.Speed
	}
	sort.SliceStable(fighters, func(i, j int) bool {
		a, b := fighters[i], fighters[j]
		if a.initiative != b.initiative {
			return a.initiative > b.initiative
		}
		if a.Def.Speed != b.Def.Speed {
			return a.Def.Speed > b.Def.Speed
		}
		return a.Def.Name < b.Def.Name
	})
}

func opposing(s Side) Side {
	if s == SideAlly {
		return SideEnemy
	}
	return SideAlly
}

// firstLiving returns the first living fighter on side, or nil.
func firstLiving(fighters []*Fighter, side Side) *Fighter {
	for _, f := range fighters {
		if f.Side == side && f.Alive() {
			return f
		}
	}
	return nil
}

// encounterOver reports whether one side is wiped out and, if so, the
// resulting outcome from the allies' perspective.
func encounterOver(fighters []*Fighter) (bool, Outcome) {
	if firstLiving(fighters, SideEnemy) == nil {
		return true, Victory
	}
	if firstLiving(fighters, SideAlly) == nil {
		return true, Defeat
	}
	return false, 0
}
