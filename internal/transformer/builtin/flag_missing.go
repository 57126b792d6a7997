package builtin

import (
	"fmt"

	"csvetl/internal/config"
	"csvetl/pkg/records"
)

// FlagMissing adds an int indicator column per source column: 1 where the
// source value is null or empty, 0 otherwise. Run it before fill_null on the
// same column, otherwise every flag is 0.
type FlagMissing struct {
	// Columns maps a source column to its flag column.
	Columns map[string]string
}

// NewFlagMissing reads columns (object of source to flag column).
func NewFlagMissing(o config.Options) (*FlagMissing, error) {
	cols := o.StringMap("columns")
	if len(cols) == 0 {
		return nil, fmt.Errorf("flag_missing needs a columns object")
	}
	return &FlagMissing{Columns: cols}, nil
}

func (*FlagMissing) Name() string { return "flag_missing" }

func (f *FlagMissing) Apply(t *records.Table) error {
	srcs := sortedKeys(f.Columns)
	if err := requireColumns(t, srcs...); err != nil {
		return err
	}
	for _, src := range srcs {
		flag := f.Columns[src]
		if err := t.AddColumn(flag, records.KindInt); err != nil {
			return err
		}
		for _, r := range t.Rows {
			if records.IsNull(r.Values[src]) {
				r.Values[flag] = int64(1)
			} else {
				r.Values[flag] = int64(0)
			}
		}
	}
	return nil
}
