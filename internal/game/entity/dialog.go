package entity

import (
	"errors"
	"fmt"
)

// DialogNode is one step of a dialog.
type DialogNode struct {
	// Speaker is the optional display name of who is talking.
	Speaker string
	Text    string
}

// Dialog defines an ordered sequence of nodes a player steps through one
// node per invocation. The final node is terminal: re-invoking a finished
// dialog repeats it.
type Dialog struct {
	ID    DialogID
	Name  string
	Nodes []DialogNode
}

// Validate checks that the Dialog satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (d *Dialog) Validate() error {
	var errs []error
	if d.ID < 0 {
		errs = append(errs, errors.New("ID must be >= 0"))
	}
	if len(d.Nodes) == 0 {
		errs = append(errs, errors.New("Nodes must not be empty"))
	}
	for i, n := range d.Nodes {
		if n.Text == "" {
			errs = append(errs, fmt.Errorf("node %d text must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("dialog %d validation failed: %v", d.ID, errs)
	}
	return nil
}

// Node returns the node at pos, clamped to the terminal node.
//
// Precondition: d has at least one node; pos >= 0.
func (d *Dialog) Node(pos int) DialogNode {
	if pos >= len(d.Nodes) {
		pos = len(d.Nodes) - 1
	}
	return d.Nodes[pos]
}

// Terminal reports whether pos is at or past the final node.
func (d *Dialog) Terminal(pos int) bool {
	return pos >= len(d.Nodes)-1
}
