package entity

import (
	"errors"
	"fmt"
)

// Currency defines a spendable currency.
type Currency struct {
	ID   CurrencyID
	Name string
	// Symbol is an optional short display form, e.g. "gp".
	Symbol string
}

// Validate checks that the Currency satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (c *Currency) Validate() error {
	var errs []error
	if c.ID < 0 {
		errs = append(errs, errors.New("ID must be >= 0"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("currency %d validation failed: %v", c.ID, errs)
	}
	return nil
}

// Format returns a human-readable amount string, preferring the symbol.
//
// Precondition: amount >= 0.
func (c *Currency) Format(amount int) string {
	if c.Symbol != "" {
		return fmt.Sprintf("%d %s", amount, c.Symbol)
	}
	return fmt.Sprintf("%d %s", amount, c.Name)
}
