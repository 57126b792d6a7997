package builtin

import (
	"fmt"

	"csvetl/internal/config"
	"csvetl/pkg/records"
)

// Rename renames columns. Renames are applied one at a time in order of the
// old name, so a rename onto a column that still exists is an error.
type Rename struct {
	Columns map[string]string
}

// NewRename reads columns (object of old to new name).
func NewRename(o config.Options) (*Rename, error) {
	cols := o.StringMap("columns")
	if len(cols) == 0 {
		return nil, fmt.Errorf("rename needs a columns object")
	}
	for from, to := range cols {
		if to == "" {
			return nil, fmt.Errorf("column %q: new name must not be empty", from)
		}
	}
	return &Rename{Columns: cols}, nil
}

func (*Rename) Name() string { return "rename" }

func (r *Rename) Apply(t *records.Table) error {
	for _, from := range sortedKeys(r.Columns) {
		if err := t.RenameColumn(from, r.Columns[from]); err != nil {
			return err
		}
	}
	return nil
}

// Drop removes columns.
type Drop struct {
	Columns []string
}

// NewDrop reads columns ([]string).
func NewDrop(o config.Options) (*Drop, error) {
	cols := o.StringSlice("columns")
	if len(cols) == 0 {
		return nil, fmt.Errorf("drop needs a list of columns")
	}
	return &Drop{Columns: cols}, nil
}

func (*Drop) Name() string { return "drop" }

func (d *Drop) Apply(t *records.Table) error {
	if err := requireColumns(t, d.Columns...); err != nil {
		return err
	}
	for _, c := range d.Columns {
		if err := t.DropColumn(c); err != nil {
			return err
		}
	}
	return nil
}
