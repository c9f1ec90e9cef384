package entity

import (
	"errors"
	"fmt"
)

// Item defines the static properties of an inventory item.
type Item struct {
	ID          ItemID
	Name        string
	Description string
	// MaxQuantity caps how many of this item a player may hold. 0 = no cap.
	MaxQuantity int
	// Value is the item's price per currency. An item absent from a shop's
	// default currency cannot be bought there.
	Value map[CurrencyID]int
}

// Validate checks that the Item satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (i *Item) Validate() error {
	var errs []error
	if i.ID < 0 {
		errs = append(errs, errors.New("ID must be >= 0"))
	}
	if i.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if i.MaxQuantity < 0 {
		errs = append(errs, errors.New("MaxQuantity must be >= 0"))
	}
	for cur, v := range i.Value {
		if v < 0 {
			errs = append(errs, fmt.Errorf("Value for currency %d must be >= 0", cur))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %d validation failed: %v", i.ID, errs)
	}
	return nil
}

// Price returns the item's price in the given currency and whether the item
// is sold in that currency at all.
func (i *Item) Price(cur CurrencyID) (int, bool) {
	p, ok := i.Value[cur]
	return p, ok
}
