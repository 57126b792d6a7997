package builtin

import (
	"fmt"

	"csvetl/internal/config"
	"csvetl/pkg/records"
)

// FillNull replaces missing values (nil or the empty string, as
// records.IsNull) in each listed column with a default value. The default is
// converted to the column's kind when the step runs, so it should come after
// coerce.
type FillNull struct {
	Values map[string]any
}

// NewFillNull reads values (object of column to default).
func NewFillNull(o config.Options) (*FillNull, error) {
	v := o.Map("values")
	if len(v) == 0 {
		return nil, fmt.Errorf("fill_null needs a values object")
	}
	return &FillNull{Values: v}, nil
}

func (*FillNull) Name() string { return "fill_null" }

func (f *FillNull) Apply(t *records.Table) error {
	cols := sortedKeys(f.Values)
	if err := requireColumns(t, cols...); err != nil {
		return err
	}
	conv := converter{bools: newBoolVocab(nil, nil)}
	for _, col := range cols {
		def, err := conv.convert(t.Kind(col), f.Values[col])
		if err != nil {
			return fmt.Errorf("column %q default: %w", col, err)
		}
		for _, r := range t.Rows {
			if records.IsNull(r.Values[col]) {
				r.Values[col] = def
			}
		}
	}
	return nil
}
