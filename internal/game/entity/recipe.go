package entity

import (
	"errors"
	"fmt"
)

// Recipe defines a crafting transformation: consume the input stacks,
// produce the output stacks.
type Recipe struct {
	ID      RecipeID
	Name    string
	Inputs  []Stack
	Outputs []Stack
}

// Validate checks that the Recipe satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (r *Recipe) Validate() error {
	var errs []error
	if r.ID < 0 {
		errs = append(errs, errors.New("ID must be >= 0"))
	}
	if r.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if len(r.Inputs) == 0 {
		errs = append(errs, errors.New("Inputs must not be empty"))
	}
	if len(r.Outputs) == 0 {
		errs = append(errs, errors.New("Outputs must not be empty"))
	}
	for _, st := range append(append([]Stack{}, r.Inputs...), r.Outputs...) {
		if st.Quantity < 1 {
			errs = append(errs, fmt.Errorf("stack quantity for item %d must be >= 1", st.Item))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("recipe %d validation failed: %v", r.ID, errs)
	}
	return nil
}
