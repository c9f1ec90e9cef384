package entity

import "fmt"

// Registry holds all loaded definitions indexed by ID. It is populated once
// at load time and read-only afterwards, so it is safe to share across
// concurrent sessions without locking.
type Registry struct {
	items      map[ItemID]*Item
	skills     map[SkillID]*Skill
	currencies map[CurrencyID]*Currency
	dialogs    map[DialogID]*Dialog
	recipes    map[RecipeID]*Recipe
	combatants map[CombatantID]*Combatant
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		items:      make(map[ItemID]*Item),
		skills:     make(map[SkillID]*Skill),
		currencies: make(map[CurrencyID]*Currency),
		dialogs:    make(map[DialogID]*Dialog),
		recipes:    make(map[RecipeID]*Recipe),
		combatants: make(map[CombatantID]*Combatant),
	}
}

// RegisterItem adds i to the registry.
//
// Precondition:  i must not be nil and must be valid.
// Postcondition: Item(i.ID) returns (i, true); returns error on duplicate ID.
func (r *Registry) RegisterItem(i *Item) error {
	if err := i.Validate(); err != nil {
		return err
	}
	if _, exists := r.items[i.ID]; exists {
		return fmt.Errorf("entity: item ID %d already registered", i.ID)
	}
	r.items[i.ID] = i
	return nil
}

// RegisterSkill adds s to the registry.
func (r *Registry) RegisterSkill(s *Skill) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, exists := r.skills[s.ID]; exists {
		return fmt.Errorf("entity: skill ID %d already registered", s.ID)
	}
	r.skills[s.ID] = s
	return nil
}

// RegisterCurrency adds c to the registry.
func (r *Registry) RegisterCurrency(c *Currency) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, exists := r.currencies[c.ID]; exists {
		return fmt.Errorf("entity: currency ID %d already registered", c.ID)
	}
	r.currencies[c.ID] = c
	return nil
}

// RegisterDialog adds d to the registry.
func (r *Registry) RegisterDialog(d *Dialog) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, exists := r.dialogs[d.ID]; exists {
		return fmt.Errorf("entity: dialog ID %d already registered", d.ID)
	}
	r.dialogs[d.ID] = d
	return nil
}

// RegisterRecipe adds rc to the registry.
func (r *Registry) RegisterRecipe(rc *Recipe) error {
	if err := rc.Validate(); err != nil {
		return err
	}
	if _, exists := r.recipes[rc.ID]; exists {
		return fmt.Errorf("entity: recipe ID %d already registered", rc.ID)
	}
	r.recipes[rc.ID] = rc
	return nil
}

// RegisterCombatant adds c to the registry.
func (r *Registry) RegisterCombatant(c *Combatant) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, exists := r.combatants[c.ID]; exists {
		return fmt.Errorf("entity: combatant ID %d already registered", c.ID)
	}
	r.combatants[c.ID] = c
	return nil
}

// Item returns the Item for id and whether it was found.
func (r *Registry) Item(id ItemID) (*Item, bool) {
	i, ok := r.items[id]
	return i, ok
}

// Skill returns the Skill for id and whether it was found.
func (r *Registry) Skill(id SkillID) (*Skill, bool) {
	s, ok := r.skills[id]
	return s, ok
}

// Currency returns the Currency for id and whether it was found.
func (r *Registry) Currency(id CurrencyID) (*Currency, bool) {
	c, ok := r.currencies[id]
	return c, ok
}

// Dialog returns the Dialog for id and whether it was found.
func (r *Registry) Dialog(id DialogID) (*Dialog, bool) {
	d, ok := r.dialogs[id]
	return d, ok
}

// Recipe returns the Recipe for id and whether it was found.
func (r *Registry) Recipe(id RecipeID) (*Recipe, bool) {
	rc, ok := r.recipes[id]
	return rc, ok
}

// Combatant returns the Combatant for id and whether it was found.
func (r *Registry) Combatant(id CombatantID) (*Combatant, bool) {
	c, ok := r.combatants[id]
	return c, ok
}

// AllRecipes returns all registered Recipes in unspecified order.
//
// Postcondition: len(result) == number of registered recipes.
func (r *Registry) AllRecipes() []*Recipe {
	out := make([]*Recipe, 0, len(r.recipes))
	for _, rc := range r.recipes {
		out = append(out, rc)
	}
	return out
}
