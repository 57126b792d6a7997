package builtin

import (
	"fmt"

	"csvetl/internal/config"
	"csvetl/pkg/records"
)

// Coerce error policies.
const (
	OnErrorFail = "fail"
	OnErrorNull = "null"
)

// Coerce casts columns to logical kinds and records the new kind on the
// table. A value that does not parse fails the step, or becomes null with
// OnError set to OnErrorNull.
type Coerce struct {
	Types map[string]records.Kind
	// Layout is the default date, time or timestamp layout.
	Layout string
	// Layouts overrides Layout per column.
	Layouts map[string]string
	OnError string
	// Truthy and Falsy replace the default bool vocabularies.
	Truthy []string
	Falsy  []string
}

// NewCoerce reads types (object of column to kind), layout, layouts,
// on_error, truthy and falsy.
func NewCoerce(o config.Options) (*Coerce, error) {
	raw := o.StringMap("types")
	if len(raw) == 0 {
		return nil, fmt.Errorf("coerce needs a types object")
	}
	c := &Coerce{
		Types:   make(map[string]records.Kind, len(raw)),
		Layout:  o.String("layout", ""),
		Layouts: o.StringMap("layouts"),
		OnError: o.String("on_error", OnErrorFail),
		Truthy:  o.StringSlice("truthy"),
		Falsy:   o.StringSlice("falsy"),
	}
	for col, s := range raw {
		k, err := records.ParseKind(s)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		c.Types[col] = k
	}
	if c.OnError != OnErrorFail && c.OnError != OnErrorNull {
		return nil, fmt.Errorf("unknown on_error %q", c.OnError)
	}
	return c, nil
}

func (*Coerce) Name() string { return "coerce" }

func (c *Coerce) Apply(t *records.Table) error {
	cols := sortedKeys(c.Types)
	if err := requireColumns(t, cols...); err != nil {
		return err
	}
	bools := newBoolVocab(c.Truthy, c.Falsy)
	for _, col := range cols {
		kind := c.Types[col]
		conv := converter{layout: c.Layout, bools: bools}
		if l, ok := c.Layouts[col]; ok {
			conv.layout = l
		}
		for _, r := range t.Rows {
			v := r.Values[col]
			if records.IsNull(v) {
				r.Values[col] = nil
				continue
			}
			out, err := conv.convert(kind, v)
			if err != nil {
				if c.OnError == OnErrorNull {
					r.Values[col] = nil
					continue
				}
				return fmt.Errorf("column %q line %d: %w", col, r.Line, err)
			}
			r.Values[col] = out
		}
		t.SetKind(col, kind)
	}
	return nil
}
