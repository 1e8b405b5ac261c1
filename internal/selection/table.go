// Package selection holds the ordered candidate list the user picks an SDK from.
package selection

import (
	"errors"
	"fmt"

	"sdkpick/internal/sdk"
)

// ErrOutOfRange is returned by Select for an index outside the table
var ErrOutOfRange = errors.New("row index out of range")

// Table is an ordered list of choices with at most one selected row.
// The selected index is either -1 (unset) or a valid row index.
type Table struct {
	rows     []sdk.Choice
	selected int
	onChange []func()
}

// NewTable creates an empty, unselected table
func NewTable() *Table {
	return &Table{selected: -1}
}

// OnChange registers fn to run synchronously after every Load and Select
func (t *Table) OnChange(fn func()) {
	t.onChange = append(t.onChange, fn)
}

// Load replaces all rows and selects the first one, if any
func (t *Table) Load(choices []sdk.Choice) {
	rows := make([]sdk.Choice, len(choices))
	copy(rows, choices)

	t.rows = rows
	t.selected = -1
	if len(rows) > 0 {
		t.selected = 0
	}
	t.notify()
}

// FindRow returns the index of the first row matching (source, version)
func (t *Table) FindRow(source, version string) (int, bool) {
	for i, row := range t.rows {
		if row.Source == source && row.Version == version {
			return i, true
		}
	}
	return -1, false
}

// Select moves the selection to index
func (t *Table) Select(index int) error {
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%w: %d (rows: %d)", ErrOutOfRange, index, len(t.rows))
	}
	t.selected = index
	t.notify()
	return nil
}

// ClearSelection unsets the selected row
func (t *Table) ClearSelection() {
	t.selected = -1
	t.notify()
}

// Current returns the selected choice
func (t *Table) Current() (sdk.Choice, bool) {
	if t.selected < 0 {
		return sdk.Choice{}, false
	}
	return t.rows[t.selected], true
}

// Selected returns the selected index, or -1
func (t *Table) Selected() int {
	return t.selected
}

// HasSelection reports whether a row is selected
func (t *Table) HasSelection() bool {
	return t.selected >= 0
}

// Rows returns a copy of the rows in display order
func (t *Table) Rows() []sdk.Choice {
	rows := make([]sdk.Choice, len(t.rows))
	copy(rows, t.rows)
	return rows
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) notify() {
	for _, fn := range t.onChange {
		fn()
	}
}
