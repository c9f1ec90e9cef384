package entity

import (
	"errors"
	"fmt"

	"github.com/fable-engine/fable/internal/game/dice"
)

// Combatant defines the static stats of an ally or enemy usable in combat
// encounters.
type Combatant struct {
	ID    CombatantID
	Name  string
	MaxHP int
	// Attack is the flat bonus added to the d20 attack roll.
	Attack int
	// Defense is the target number an attack roll must meet or beat.
	Defense int
	// Speed breaks initiative ties; higher acts first.
	Speed int
	// Damage is the dice expression rolled on a hit, e.g. "1d6+1".
	Damage string
}

// Validate checks that the Combatant satisfies its invariants, including
// that Damage parses as a dice expression.
//
// Postcondition: returns nil iff all fields are valid.
func (c *Combatant) Validate() error {
	var errs []error
	if c.ID < 0 {
		errs = append(errs, errors.New("ID must be >= 0"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if c.MaxHP < 1 {
		errs = append(errs, errors.New("MaxHP must be >= 1"))
	}
	if c.Defense < 1 {
		errs = append(errs, errors.New("Defense must be >= 1"))
	}
	if _, err := dice.Parse(c.Damage); err != nil {
		errs = append(errs, fmt.Errorf("Damage: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("combatant %d validation failed: %v", c.ID, errs)
	}
	return nil
}
